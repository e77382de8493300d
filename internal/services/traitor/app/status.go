package app

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RuntimeServiceName is the gRPC service that reports assignment progress.
const RuntimeServiceName = "traitorops.traitor.v1.RuntimeService"

// GetAssignmentMethod is the full method name of the assignment lookup.
const GetAssignmentMethod = "/" + RuntimeServiceName + "/GetAssignment"

// assignmentReader is the slice of Runtime the status service needs.
type assignmentReader interface {
	Assignment(traitorID string) (AssignmentStatus, error)
}

type runtimeServer interface {
	getAssignment(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

type runtimeService struct {
	runtime assignmentReader
	locale  string
}

// The request is the traitor ID; the response is the status as a Struct.
var runtimeServiceDesc = grpc.ServiceDesc{
	ServiceName: RuntimeServiceName,
	HandlerType: (*runtimeServer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "GetAssignment",
		Handler:    getAssignmentHandler,
	}},
	Metadata: "traitorops/traitor/v1/runtime.proto",
}

func getAssignmentHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(wrapperspb.StringValue)
	if err := dec(req); err != nil {
		return nil, err
	}
	svc := srv.(runtimeServer)
	if interceptor == nil {
		return svc.getAssignment(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAssignmentMethod}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return svc.getAssignment(ctx, req.(*wrapperspb.StringValue))
	})
}

func (s *runtimeService) getAssignment(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	status, err := s.runtime.Assignment(req.GetValue())
	if err != nil {
		return nil, apperrors.HandleError(err, s.locale)
	}
	out, err := structpb.NewStruct(map[string]any{
		"traitor_id":      status.TraitorID,
		"objective_id":    status.ObjectiveID,
		"finished":        status.Finished,
		"outcome":         status.Outcome,
		"completed_goals": status.CompletedGoals,
		"total_goals":     status.TotalGoals,
	})
	if err != nil {
		return nil, apperrors.HandleError(err, s.locale)
	}
	return out, nil
}

// RegisterRuntime exposes rt through the assignment service, rendering error
// messages for locale. It must be called before Serve.
func (s *Server) RegisterRuntime(rt *Runtime, locale string) {
	if s == nil || rt == nil {
		return
	}
	s.grpcServer.RegisterService(&runtimeServiceDesc, &runtimeService{runtime: rt, locale: locale})
}

// FetchAssignment asks the runtime at addr for the status of traitorID.
// Errors keep their gRPC status, including localized details.
func FetchAssignment(ctx context.Context, addr, traitorID string) (AssignmentStatus, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return AssignmentStatus{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, GetAssignmentMethod, wrapperspb.String(traitorID), resp); err != nil {
		return AssignmentStatus{}, err
	}
	fields := resp.GetFields()
	return AssignmentStatus{
		TraitorID:      fields["traitor_id"].GetStringValue(),
		ObjectiveID:    fields["objective_id"].GetStringValue(),
		Finished:       fields["finished"].GetBoolValue(),
		Outcome:        fields["outcome"].GetStringValue(),
		CompletedGoals: int(fields["completed_goals"].GetNumberValue()),
		TotalGoals:     int(fields["total_goals"].GetNumberValue()),
	}, nil
}
