package server

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/cryptolib/cryptolib/authapi"
	"github.com/cryptolib/cryptolib/conf"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeProvider struct {
	challenges    []*authapi.ChallengeRequest
	verifications []*authapi.ChallengeVerification
	reply         *authapi.Reply
	err           error
}

func (f *fakeProvider) RequestChallenge(ctx context.Context, body *authapi.ChallengeRequest) (*authapi.Reply, error) {
	f.challenges = append(f.challenges, body)
	return f.reply, f.err
}

func (f *fakeProvider) VerifyChallenge(ctx context.Context, body *authapi.ChallengeVerification) (*authapi.Reply, error) {
	f.verifications = append(f.verifications, body)
	return f.reply, f.err
}

func testConf() *conf.Conf {
	return &conf.Conf{
		Auth: conf.AuthConf{
			Challenge: conf.ChallengeConf{
				Domain:         "localhost",
				Statement:      "Please confirm login",
				Uri:            "https://localhost:3000/",
				Resources:      []string{"https://docs.moralis.io/"},
				ExpirationTime: "2023-01-01T00:00:000Z",
				NotBefore:      "2024-01-01T00:00:000Z",
				Timeout:        30,
			},
		},
	}
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestChallengeFixedFields(t *testing.T) {
	provider := &fakeProvider{reply: &authapi.Reply{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	router := InitRouter(testConf(), provider)

	inputs := [][2]string{{"1", "0xaaa"}, {"137", "0xbbb"}, {"56", "not-an-address"}}
	for _, in := range inputs {
		w := serve(router, http.MethodGet, "/requestChallenge?ChainId="+in[0]+"&address="+in[1])
		assert.Equal(t, http.StatusOK, w.Code)
	}

	require.Len(t, provider.challenges, len(inputs))
	for i, body := range provider.challenges {
		assert.Equal(t, "localhost", body.Domain)
		assert.Equal(t, "Please confirm login", body.Statement)
		assert.Equal(t, "https://localhost:3000/", body.Uri)
		assert.Equal(t, []string{"https://docs.moralis.io/"}, body.Resources)
		assert.Equal(t, "2023-01-01T00:00:000Z", body.ExpirationTime)
		assert.Equal(t, "2024-01-01T00:00:000Z", body.NotBefore)
		assert.Equal(t, 30, body.Timeout)

		require.NotNil(t, body.ChainId)
		require.NotNil(t, body.Address)
		assert.Equal(t, inputs[i][0], *body.ChainId)
		assert.Equal(t, inputs[i][1], *body.Address)
	}
}

func TestRequestChallengeMissingParamsForwarded(t *testing.T) {
	provider := &fakeProvider{reply: &authapi.Reply{StatusCode: http.StatusBadRequest, Body: []byte(`{"message":"address required"}`)}}
	router := InitRouter(testConf(), provider)

	w := serve(router, http.MethodGet, "/requestChallenge?address=")

	require.Len(t, provider.challenges, 1)
	assert.Nil(t, provider.challenges[0].ChainId)
	require.NotNil(t, provider.challenges[0].Address)
	assert.Equal(t, "", *provider.challenges[0].Address)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `{"message":"address required"}`, w.Body.String())
}

func TestVerifyChallengeBodyUnmodified(t *testing.T) {
	provider := &fakeProvider{reply: &authapi.Reply{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{"ok":true}`)}}
	router := InitRouter(testConf(), provider)

	w := serve(router, http.MethodGet, "/verifyChallenge?message=hello%20world%0Aline&signature=0xdeadbeef")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"ok":true}`, w.Body.String())

	require.Len(t, provider.verifications, 1)
	raw, err := json.Marshal(provider.verifications[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hello world\nline","signature":"0xdeadbeef"}`, string(raw))
}

func TestProviderUnreachable(t *testing.T) {
	provider := &fakeProvider{err: errors.New("dial tcp: connection refused")}
	router := InitRouter(testConf(), provider)

	w := serve(router, http.MethodGet, "/verifyChallenge?message=m&signature=s")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Data, "connection refused")
}

func TestRoutePrefixAndExtraSlash(t *testing.T) {
	c := testConf()
	c.Auth.RoutePrefix = "/auth"
	provider := &fakeProvider{reply: &authapi.Reply{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	router := InitRouter(c, provider)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/auth/requestChallenge?ChainId=1&address=0x1").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/auth//verifyChallenge?message=m&signature=s").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/requestChallenge").Code)
}

func TestCorsAndRequestID(t *testing.T) {
	provider := &fakeProvider{reply: &authapi.Reply{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	router := InitRouter(testConf(), provider)

	w := serve(router, http.MethodOptions, "/requestChallenge")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, provider.challenges)

	w = serve(router, http.MethodGet, "/verifyChallenge?message=m&signature=s")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

// End to end through the real provider client against a stub upstream.
func TestRelayThroughAuthClient(t *testing.T) {
	var upstreamBody map[string]interface{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/challenge/request/evm", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("X-API-Key"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &upstreamBody)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"x","profileId":"p","message":"localhost wants you to sign in"}`))
	}))
	defer upstream.Close()

	provider := authapi.NewClient(upstream.URL, "api-key", time.Second)
	router := InitRouter(testConf(), provider)

	w := serve(router, http.MethodGet, "/requestChallenge?ChainId=1&address=0x1234")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":"x","profileId":"p","message":"localhost wants you to sign in"}`, w.Body.String())

	assert.Equal(t, "localhost", upstreamBody["domain"])
	assert.Equal(t, "1", upstreamBody["chainId"])
	assert.Equal(t, "0x1234", upstreamBody["address"])
	assert.Equal(t, "Please confirm login", upstreamBody["statement"])
	assert.Equal(t, "https://localhost:3000/", upstreamBody["uri"])
	assert.Equal(t, []interface{}{"https://docs.moralis.io/"}, upstreamBody["resources"])
	assert.Equal(t, float64(30), upstreamBody["timeout"])
}
