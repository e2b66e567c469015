package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/storefront/pkg/correlation"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// loggingInterceptor пишет метод, код ответа и длительность вызова.
func loggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(correlation.Header); len(ids) > 0 {
				ctx = correlation.WithID(ctx, ids[0])
			}
		}

		resp, err := handler(ctx, req)

		log.With("correlation_id", correlation.FromContext(ctx)).Debugf(
			"grpc %s %s %s",
			info.FullMethod,
			status.Code(err),
			time.Since(start),
		)
		return resp, err
	}
}

// recoveryInterceptor превращает панику обработчика в codes.Internal.
func recoveryInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(fmt.Errorf("panic: %v", r), "grpc handler %s panicked", info.FullMethod)
				err = status.Error(codes.Internal, e.ErrInternalServerError.Error())
			}
		}()

		return handler(ctx, req)
	}
}
