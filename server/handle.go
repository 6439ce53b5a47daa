package server

import (
	"context"
	"github.com/cryptolib/cryptolib/authapi"
	"github.com/cryptolib/cryptolib/conf"
	"github.com/gin-gonic/gin"
	"net/http"
)

type Provider interface {
	RequestChallenge(ctx context.Context, body *authapi.ChallengeRequest) (*authapi.Reply, error)
	VerifyChallenge(ctx context.Context, body *authapi.ChallengeVerification) (*authapi.Reply, error)
}

func InitRouter(conf *conf.Conf, provider Provider) *gin.Engine {
	template := NewChallengeTemplate(conf.Auth.Challenge)

	router := gin.New()
	router.RemoveExtraSlash = true
	router.Use(requestID(), accessLog(), gin.Recovery(), cors())

	group := router.Group(conf.Auth.RoutePrefix)

	group.GET("/requestChallenge", func(c *gin.Context) {
		body := template.Build(optionalQuery(c, "ChainId"), optionalQuery(c, "address"))
		reply, err := provider.RequestChallenge(c.Request.Context(), body)
		relay(c, reply, err)
	})

	group.GET("/verifyChallenge", func(c *gin.Context) {
		body := &authapi.ChallengeVerification{
			Message:   optionalQuery(c, "message"),
			Signature: optionalQuery(c, "signature"),
		}
		reply, err := provider.VerifyChallenge(c.Request.Context(), body)
		relay(c, reply, err)
	})

	return router
}

// optionalQuery returns nil for an absent parameter so the provider sees null.
func optionalQuery(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}

func relay(c *gin.Context, reply *authapi.Reply, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Code: http.StatusBadGateway, Data: err.Error()})
		return
	}

	contentType := reply.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(reply.StatusCode, contentType, reply.Body)
}
