package main

import (
	"github.com/cryptolib/cryptolib/authapi"
	"github.com/cryptolib/cryptolib/server"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRelayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Serve /requestChallenge and /verifyChallenge in front of the auth provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.load()
			if err != nil {
				return err
			}
			if c.Auth.ApiKey == "" {
				log.Warn("Auth.ApiKey is empty, the provider will reject every call")
			}

			gin.SetMode(gin.ReleaseMode)
			provider := authapi.NewClient(c.Auth.BaseUrl, c.Auth.ApiKey, c.CallTimeout)
			router := server.InitRouter(c, provider)

			log.WithFields(log.Fields{
				"addr":     c.Auth.ListenAddr,
				"prefix":   c.Auth.RoutePrefix,
				"provider": c.Auth.BaseUrl,
			}).Info("Auth relay listening")
			return router.Run(c.Auth.ListenAddr)
		},
	}
}
