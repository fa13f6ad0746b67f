package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openshift/hive-claims-manager/pkg/claims"
)

// claimResponse keeps the shape clients of the API already consume, where info is a list
// holding a single entry.
type claimResponse struct {
	Name      string             `json:"name"`
	Namespace string             `json:"namespace"`
	Pool      string             `json:"pool"`
	Info      []claims.ClaimInfo `json:"info"`
}

func (s *Server) healthcheck(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}

func (s *Server) listPools(c *gin.Context) {
	pools, err := s.claims.ListPools(c.Request.Context())
	if err != nil {
		loggerFrom(c).WithError(err).Error("could not list pools")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if pools == nil {
		pools = []claims.Pool{}
	}
	c.JSON(http.StatusOK, pools)
}

func (s *Server) listClaims(c *gin.Context) {
	views := s.claims.ListClaimViews(c.Request.Context())
	resp := make([]claimResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, claimResponse{
			Name:      v.Name,
			Namespace: v.Namespace,
			Pool:      v.Pool,
			Info:      []claims.ClaimInfo{v.Info},
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) createClaim(c *gin.Context) {
	user, pool := c.Query("user"), c.Query("name")
	if user == "" || pool == "" {
		c.JSON(http.StatusUnauthorized, claims.ClaimResult{Error: "User or Pool name missing"})
		return
	}
	c.JSON(http.StatusOK, s.claims.CreateClaim(c.Request.Context(), user, pool))
}

func (s *Server) deleteClaim(c *gin.Context) {
	name, user := strings.TrimSpace(c.Query("name")), c.Query("user")
	if !s.claims.OwnsClaim(user, name) {
		c.JSON(http.StatusUnauthorized, claims.ClaimResult{Error: "User is not allowed to delete this claim"})
		return
	}
	if err := s.claims.DeleteClaim(c.Request.Context(), name); err != nil {
		c.JSON(http.StatusInternalServerError, claims.ClaimResult{Name: name, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

func (s *Server) listOwnerClaimNames(c *gin.Context) {
	names, err := s.claims.ListOwnerClaimNames(c.Request.Context(), c.Query("user"))
	if err != nil {
		loggerFrom(c).WithError(err).Error("could not list claims of user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) deleteAllClaims(c *gin.Context) {
	result, err := s.claims.DeleteAllClaimsForOwner(c.Request.Context(), c.Query("user"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"deleted_claims": result.DeletedNames, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) downloadKubeconfig(c *gin.Context) {
	fileName := c.Param("filename")
	f, err := s.claims.OpenKubeconfig(fileName)
	if err != nil {
		loggerFrom(c).WithError(err).WithField("file", fileName).Warn("kubeconfig not available")
		c.JSON(http.StatusNotFound, gin.H{"error": "kubeconfig not found"})
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", f, map[string]string{
		"Content-Disposition": `attachment; filename="` + fileName + `"`,
	})
}
