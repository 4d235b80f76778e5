package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kuechlerm/arkstruct/catalog"
	"github.com/kuechlerm/arkstruct/registry"
	"github.com/kuechlerm/arkstruct/server"
)

// stub answers every catalog operation with predictable data derived from the request.
type stub struct{}

func (s *stub) AName(ctx context.Context, args *catalog.ANameRequest, reply *catalog.ANameResponse) error {
	reply.Msg = args.Msg
	return nil
}

func (s *stub) Eins(ctx context.Context, args *catalog.EinsRequest, reply *catalog.EinsResponse) error {
	reply.ResponseString = fmt.Sprintf("%s/%d/%t", args.RequiredString, args.RequiredInt, args.RequiredBool)
	return nil
}

func (s *stub) Listen(ctx context.Context, args *catalog.ListenRequest, reply *catalog.ListenResponse) error {
	reply.Dinge = []catalog.DingDTO{{ID: 1, Name: "eins"}, {ID: 2, Name: "zwei"}}
	return nil
}

func (s *stub) Zwei(ctx context.Context, args *catalog.ZweiRequest, reply *catalog.ZweiResponse) error {
	reply.ResponseString = "zwei"
	if args.OptionalString != nil && *args.OptionalString != "" {
		reply.ResponseString = *args.OptionalString
	}
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr            string
		advertise       string
		etcdEndpoints   []string
		service         string
		shutdownTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a stub implementation of every operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svr := server.NewServer(a.log)
			if err := svr.RegisterName(service, &stub{}); err != nil {
				return err
			}

			var reg registry.Registry
			if len(etcdEndpoints) > 0 {
				etcd, err := registry.NewEtcdRegistry(etcdEndpoints)
				if err != nil {
					return fmt.Errorf("connecting to etcd: %w", err)
				}
				defer etcd.Close()
				reg = etcd
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			served := make(chan error, 1)
			go func() {
				served <- svr.Serve("tcp", addr, advertise, reg)
			}()

			select {
			case err := <-served:
				return err
			case <-ctx.Done():
			}
			a.log.Info().Msg("shutting down")
			if err := svr.Shutdown(shutdownTimeout); err != nil {
				return err
			}
			if err := <-served; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&advertise, "advertise", "", "Address registered in etcd (defaults to the listen address)")
	cmd.Flags().StringSliceVar(&etcdEndpoints, "etcd", nil, "etcd endpoints; registers the server when set")
	cmd.Flags().StringVar(&service, "service", "arkstruct", "Service name used for registration")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Time allowed for in-flight requests on shutdown")
	return cmd
}
