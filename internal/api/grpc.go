package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"stockperf/internal/domain"
	"stockperf/internal/httpapi"
	"stockperf/internal/view"
)

const (
	chartServiceName = "stockperf.v1.ChartService"
	getChartMethod   = "/" + chartServiceName + "/GetChart"
)

// ChartSource computes a chart for a selection. *httpapi.ChartServer
// satisfies it, so both transports read the same data set.
type ChartSource interface {
	Chart(p domain.Period, g domain.Grouping) view.State
}

var _ ChartSource = (*httpapi.ChartServer)(nil)

// ChartServiceServer is the server API for the chart service. Requests and
// responses are google.protobuf.Struct messages carrying the same fields as
// the JSON API.
type ChartServiceServer interface {
	GetChart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ChartService serves chart slices over gRPC.
type ChartService struct {
	charts ChartSource
}

var _ ChartServiceServer = (*ChartService)(nil)

// NewChartService creates a ChartService backed by charts.
func NewChartService(charts ChartSource) *ChartService {
	return &ChartService{charts: charts}
}

// GetChart reads "period" and "grouping" from the request (both optional)
// and returns the chart response as a Struct.
func (s *ChartService) GetChart(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	p, g, err := httpapi.ParseSelection(
		fields["period"].GetStringValue(),
		fields["grouping"].GetStringValue(),
	)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp := httpapi.NewChartResponse(s.charts.Chart(p, g))
	b, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding chart: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(b); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding chart: %v", err)
	}
	return out, nil
}

// RegisterChartService registers srv on the gRPC server.
func RegisterChartService(s grpc.ServiceRegistrar, srv ChartServiceServer) {
	s.RegisterService(&chartServiceDesc, srv)
}

var chartServiceDesc = grpc.ServiceDesc{
	ServiceName: chartServiceName,
	HandlerType: (*ChartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetChart", Handler: getChartHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockperf/v1/chart.proto",
}

func getChartHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartServiceServer).GetChart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getChartMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChartServiceServer).GetChart(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// GetChart calls the chart service over conn and decodes the reply.
func GetChart(ctx context.Context, conn grpc.ClientConnInterface, p domain.Period, g domain.Grouping) (*httpapi.ChartResponse, error) {
	in, err := structpb.NewStruct(map[string]any{
		"period":   string(p),
		"grouping": string(g),
	})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, getChartMethod, in, out); err != nil {
		return nil, fmt.Errorf("GetChart: %w", err)
	}
	b, err := out.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("decoding chart: %w", err)
	}
	var resp httpapi.ChartResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("decoding chart: %w", err)
	}
	return &resp, nil
}

// loggingInterceptor logs each unary call with its status code.
func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
