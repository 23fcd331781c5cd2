package api

import (
	"net"

	"github.com/lioia/pagerank/pkg/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServer exposes the standard gRPC health service for the process
type HealthServer struct {
	Server *grpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	server := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(server, h)
	// Register reflection service on gRPC server.
	reflection.Register(server)
	return &HealthServer{Server: server, health: h}
}

// SetServing updates the status of a service ("" is the whole process)
func (h *HealthServer) SetServing(service string, serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(service, status)
}

func (h *HealthServer) Serve(lis net.Listener) error {
	utils.ServerLog("Starting health server at %s", lis.Addr())
	return h.Server.Serve(lis)
}

func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.Server.GracefulStop()
}
