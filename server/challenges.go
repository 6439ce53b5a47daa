package server

import (
	"github.com/cryptolib/cryptolib/authapi"
	"github.com/cryptolib/cryptolib/conf"
)

// ChallengeTemplate holds the challenge fields that never depend on the caller.
type ChallengeTemplate struct {
	domain         string
	statement      string
	uri            string
	expirationTime string
	notBefore      string
	resources      []string
	timeout        int
}

func NewChallengeTemplate(c conf.ChallengeConf) *ChallengeTemplate {
	return &ChallengeTemplate{
		domain:         c.Domain,
		statement:      c.Statement,
		uri:            c.Uri,
		expirationTime: c.ExpirationTime,
		notBefore:      c.NotBefore,
		resources:      append([]string(nil), c.Resources...),
		timeout:        c.Timeout,
	}
}

// Build fills in the caller's chain id and address; everything else comes
// from the template.
func (t *ChallengeTemplate) Build(chainId, address *string) *authapi.ChallengeRequest {
	return &authapi.ChallengeRequest{
		Domain:         t.domain,
		ChainId:        chainId,
		Address:        address,
		Statement:      t.statement,
		Uri:            t.uri,
		ExpirationTime: t.expirationTime,
		NotBefore:      t.notBefore,
		Resources:      append([]string(nil), t.resources...),
		Timeout:        t.timeout,
	}
}
