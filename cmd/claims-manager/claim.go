package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sigs.k8s.io/yaml"

	"github.com/openshift/hive-claims-manager/pkg/claims"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

type claimOptions struct {
	*options
	User   string
	Output string
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", outputYAML, "Output format (yaml, json)")
}

// newPoolsCommand prints the capacity of every ClusterPool.
func newPoolsCommand(opts *options) *cobra.Command {
	opt := &claimOptions{options: opts}
	cmd := &cobra.Command{
		Use:   "pools",
		Short: "lists the ClusterPools and their capacity",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			svc := newService(loadConfig(cmd, opts))
			pools, err := svc.ListPools(cmd.Context())
			if err != nil {
				log.WithError(err).Fatal("Error")
			}
			opt.print(cmd.OutOrStdout(), pools)
		},
	}
	addOutputFlag(cmd, &opt.Output)
	return cmd
}

// newClaimCommand is the entrypoint to the 'claim' subcommands, which run the same operations as
// the API without starting the server.
func newClaimCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Utility to manage ClusterClaims",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Usage()
		},
	}
	cmd.AddCommand(newClaimCreateCommand(opts))
	cmd.AddCommand(newClaimListCommand(opts))
	cmd.AddCommand(newClaimDeleteCommand(opts))
	return cmd
}

func newClaimCreateCommand(opts *options) *cobra.Command {
	opt := &claimOptions{options: opts}
	cmd := &cobra.Command{
		Use:   "create CLUSTER_POOL_NAME",
		Short: "claims a cluster from a ClusterPool",
		Long:  "claims a cluster from the ClusterPool on behalf of the user. The claim is named after the user.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := newService(loadConfig(cmd, opts))
			result := svc.CreateClaim(cmd.Context(), opt.User, args[0])
			opt.print(cmd.OutOrStdout(), result)
			if result.Error != "" {
				log.WithField("claim", result.Name).Fatal(result.Error)
			}
		},
	}
	cmd.Flags().StringVarP(&opt.User, "user", "u", "", "User the cluster is claimed for")
	cmd.MarkFlagRequired("user")
	addOutputFlag(cmd, &opt.Output)
	return cmd
}

func newClaimListCommand(opts *options) *cobra.Command {
	opt := &claimOptions{options: opts}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "lists claims with the console, credentials and kubeconfig of their clusters",
		Long:  "lists all claims, or only the names of the claims of a user when --user is set",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			svc := newService(loadConfig(cmd, opts))
			if opt.User == "" {
				opt.print(cmd.OutOrStdout(), svc.ListClaimViews(cmd.Context()))
				return
			}
			names, err := svc.ListOwnerClaimNames(cmd.Context(), opt.User)
			if err != nil {
				log.WithError(err).Fatal("Error")
			}
			opt.print(cmd.OutOrStdout(), names)
		},
	}
	cmd.Flags().StringVarP(&opt.User, "user", "u", "", "Only list the names of the claims of this user")
	addOutputFlag(cmd, &opt.Output)
	return cmd
}

func newClaimDeleteCommand(opts *options) *cobra.Command {
	opt := &claimOptions{options: opts}
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [CLAIM_NAME]",
		Short: "deletes a claim of the user, or all of them with --all",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			svc := newService(loadConfig(cmd, opts))
			if err := opt.delete(cmd.Context(), svc, args, all, cmd.OutOrStdout()); err != nil {
				log.WithError(err).Fatal("Error")
			}
		},
	}
	cmd.Flags().StringVarP(&opt.User, "user", "u", "", "User owning the claims")
	cmd.Flags().BoolVar(&all, "all", false, "Delete every claim of the user")
	cmd.MarkFlagRequired("user")
	addOutputFlag(cmd, &opt.Output)
	return cmd
}

// claimDeleter is the part of the claims service used to delete claims.
type claimDeleter interface {
	OwnsClaim(owner, claimName string) bool
	DeleteClaim(ctx context.Context, name string) error
	DeleteAllClaimsForOwner(ctx context.Context, owner string) (claims.DeleteResult, error)
}

func (o *claimOptions) delete(ctx context.Context, svc claimDeleter, args []string, all bool, out io.Writer) error {
	switch {
	case all && len(args) > 0:
		return errors.New("either a claim name or --all can be given")
	case all:
		result, err := svc.DeleteAllClaimsForOwner(ctx, o.User)
		o.print(out, result)
		return err
	case len(args) == 0:
		return errors.New("a claim name or --all is required")
	}
	name := args[0]
	if !svc.OwnsClaim(o.User, name) {
		return errors.Errorf("user %s is not allowed to delete claim %s", o.User, name)
	}
	if err := svc.DeleteClaim(ctx, name); err != nil {
		return err
	}
	o.print(out, map[string]string{"deleted": name})
	return nil
}

func (o *claimOptions) print(out io.Writer, obj interface{}) {
	var (
		data []byte
		err  error
	)
	switch o.Output {
	case outputJSON:
		data, err = json.MarshalIndent(obj, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(obj)
	}
	if err != nil {
		log.WithError(err).Fatal("could not print result")
	}
	fmt.Fprint(out, string(data))
}
