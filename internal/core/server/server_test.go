package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/bulkmsg/internal/core/api"
	"github.com/solatis/bulkmsg/internal/core/config"
	"github.com/solatis/bulkmsg/internal/customers"
	"github.com/solatis/bulkmsg/internal/lists"
	"github.com/solatis/bulkmsg/internal/messaging"
	"github.com/solatis/bulkmsg/internal/session"
	"github.com/solatis/bulkmsg/internal/types"
)

func newService(t *testing.T) *api.Service {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store := customers.NewStore(logger)
	store.Replace([]types.Customer{
		{ID: "c1", Name: "Acme Hauling", Type: "commercial"},
		{ID: "c2", Name: "Jane Doe", Type: "residential"},
		{ID: "c3", Name: "John Roe", Type: "residential"},
	})
	ls := lists.Open(context.Background(), nil, logger)
	composer, err := messaging.NewComposer(messaging.Config{DataDir: t.TempDir()}, logger)
	require.NoError(t, err)

	svc, err := api.NewService(api.Deps{
		Customers: store,
		Lists:     ls,
		Sessions:  session.NewRegistry(store, ls, logger),
		Composer:  composer,
		Logger:    logger,
	})
	require.NoError(t, err)
	return svc
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return l
}

func TestNewServers_NilArgs(t *testing.T) {
	svc := newService(t)
	cfg := &config.Default().Server

	_, err := NewGRPCServer(nil, svc, nil)
	assert.Error(t, err)
	_, err = NewGRPCServer(cfg, nil, nil)
	assert.Error(t, err)
	_, err = NewHTTPServer(nil, svc)
	assert.Error(t, err)
	_, err = NewHTTPServer(cfg, nil)
	assert.Error(t, err)
}

func TestGRPCServer_HealthAndCount(t *testing.T) {
	cfg := config.Default().Server
	srv, err := NewGRPCServer(&cfg, newService(t), zaptest.NewLogger(t))
	require.NoError(t, err)

	lis := listen(t)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()
	t.Cleanup(func() {
		require.NoError(t, srv.Shutdown(context.Background()))
		require.NoError(t, <-errCh)
	})

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hc, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: api.SegmentsServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, hc.GetStatus())

	filterJSON := `{"isGroup":true,"logicalOperator":"AND","conditions":[
		{"id":"n1","field":"type","operator":"equals","value":"residential"}]}`
	var filterMap map[string]any
	require.NoError(t, json.Unmarshal([]byte(filterJSON), &filterMap))
	req, err := structpb.NewStruct(map[string]any{"filter": filterMap, "search": "jane"})
	require.NoError(t, err)

	resp, err := api.NewSegmentsClient(conn).Count(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, float64(1), resp.GetFields()["count"].GetNumberValue())
	ids := resp.GetFields()["ids"].GetListValue().AsSlice()
	assert.Equal(t, []any{"c2"}, ids)

	all, err := api.NewSegmentsClient(conn).Count(ctx, &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, float64(3), all.GetFields()["count"].GetNumberValue())
}

func TestHTTPServer_ServeAndShutdown(t *testing.T) {
	cfg := config.Default().Server
	srv, err := NewHTTPServer(&cfg, newService(t))
	require.NoError(t, err)

	lis := listen(t)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/health", lis.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["customers"])

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-errCh)
	assert.Equal(t, lis.Addr(), srv.Addr())
}
