/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: serve.go
Description: Serve command. Runs the HTTP stats service until interrupted.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/stlstream/pkg/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServerConfig builds the server configuration from viper
func ServerConfig() server.Config {
	return server.Config{
		ListenAddr:      viper.GetString("listen_addr"),
		MaxBodyBytes:    viper.GetInt64("max_body_bytes"),
		MaxTriangles:    viper.GetUint32("max_triangles"),
		MaxLineLength:   viper.GetInt("max_line_length"),
		ShutdownTimeout: viper.GetDuration("shutdown_timeout"),
	}
}

// RunServe starts the HTTP service
func RunServe(cmd *cobra.Command, args []string) error {
	logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	s, err := server.New(ServerConfig(), logger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.ListenAndServe(ctx)
}
