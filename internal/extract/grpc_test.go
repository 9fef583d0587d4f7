package extract

import (
	"context"
	"encoding/base64"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

// extractHandler answers ExtractMethod; any other method is Unimplemented.
type extractHandler func(req *structpb.Struct) (*structpb.Struct, error)

func newBufconnTransport(t *testing.T, h extractHandler) *GRPCTransport {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer(grpc.UnknownServiceHandler(func(_ any, stream grpc.ServerStream) error {
		method, _ := grpc.MethodFromServerStream(stream)
		if method != ExtractMethod {
			return status.Errorf(codes.Unimplemented, "unknown method %s", method)
		}
		req := &structpb.Struct{}
		if err := stream.RecvMsg(req); err != nil {
			return err
		}
		resp, err := h(req)
		if err != nil {
			return err
		}
		return stream.SendMsg(resp)
	}))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewGRPCTransport(conn, nil)
}

func TestGRPCSubmitSuccess(t *testing.T) {
	var got map[string]any
	tr := newBufconnTransport(t, func(req *structpb.Struct) (*structpb.Struct, error) {
		got = req.AsMap()
		return structpb.NewStruct(map[string]any{"invoiceId": "inv-9"})
	})

	res := NewClient(tr, 0, nil).Submit(context.Background(), pdfDoc())

	assert.Equal(t, Success{RecordID: "inv-9"}, res)
	require.NotNil(t, got)
	assert.Equal(t, "invoice.pdf", got["filename"])
	assert.Equal(t, "application/pdf", got["media_type"])
	content, err := base64.StdEncoding.DecodeString(got["content_base64"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7 body"), content)
}

func TestGRPCSubmitStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{
			name:    "invalid argument is a service error",
			err:     status.Error(codes.InvalidArgument, "Only PDF files are supported"),
			kind:    KindService,
			message: "Only PDF files are supported",
		},
		{
			name:    "internal without message",
			err:     status.Error(codes.Internal, ""),
			kind:    KindService,
			message: "extraction service returned status 13",
		},
		{
			name: "unavailable is connectivity",
			err:  status.Error(codes.Unavailable, "backend down"),
			kind: KindConnectivity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newBufconnTransport(t, func(*structpb.Struct) (*structpb.Struct, error) {
				return nil, tt.err
			})
			res := NewClient(tr, 0, nil).Submit(context.Background(), pdfDoc())

			f, ok := res.(Failure)
			require.True(t, ok)
			assert.Equal(t, tt.kind, f.Kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, f.Message)
			} else {
				assert.Contains(t, f.Message, "could not reach extraction service: ")
			}
		})
	}
}

func TestGRPCSubmitMalformedResponse(t *testing.T) {
	tr := newBufconnTransport(t, func(*structpb.Struct) (*structpb.Struct, error) {
		return structpb.NewStruct(map[string]any{"status": "ok"})
	})

	res := NewClient(tr, 0, nil).Submit(context.Background(), pdfDoc())

	f, ok := res.(Failure)
	require.True(t, ok)
	assert.Equal(t, KindUnexpected, f.Kind)
}
