package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const jsonCodecName = "json"

// jsonCodec lets the Identity Service be called with plain JSON messages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

const identityService = "/notekeeper.identity.v1.Identity/"

const (
	methodLogin          = identityService + "Login"
	methodRegister       = identityService + "Register"
	methodLogout         = identityService + "Logout"
	methodMe             = identityService + "Me"
	methodRefresh        = identityService + "Refresh"
	methodUpdateProfile  = identityService + "UpdateProfile"
	methodChangePassword = identityService + "ChangePassword"
	methodPing           = identityService + "Ping"
)

// publicMethods never carry the bearer token.
var publicMethods = map[string]bool{
	methodLogin:    true,
	methodRegister: true,
	methodPing:     true,
}

type pingResponse struct {
	Status string `json:"status"`
}

type conn interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
	Close() error
}

// GRPCClient talks to the gRPC flavour of the Identity Service.
type GRPCClient struct {
	bearer

	endpointURL string
	conn        conn
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodecName)),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	token := ""
	if !publicMethods[method] {
		token = s.currentToken()
	}
	if token != "" {
		ctx = withAccessToken(ctx, token)
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err == nil || token == "" {
		return err
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			s.unauthorized()
		}
	}
	return err
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.conn.Invoke(ctx, methodLogin, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, s.mapError(err)
	}
	return &resp, nil
}

func (s *GRPCClient) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	req := registerRequest{Name: name, Email: email, Password: password}
	if err := s.conn.Invoke(ctx, methodRegister, req, &resp); err != nil {
		return nil, s.mapError(err)
	}
	return &resp, nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	if err := s.conn.Invoke(ctx, methodLogout, struct{}{}, &struct{}{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp userResponse
	if err := s.conn.Invoke(ctx, methodMe, struct{}{}, &resp); err != nil {
		return nil, s.mapError(err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: response without user", ErrServer)
	}
	return resp.User, nil
}

func (s *GRPCClient) RefreshToken(ctx context.Context) (string, error) {
	var resp tokenResponse
	if err := s.conn.Invoke(ctx, methodRefresh, struct{}{}, &resp); err != nil {
		return "", s.mapError(err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: response without token", ErrServer)
	}
	return resp.Token, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	var resp userResponse
	if err := s.conn.Invoke(ctx, methodUpdateProfile, p, &resp); err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, p models.PasswordChange) error {
	if err := s.conn.Invoke(ctx, methodChangePassword, p, &struct{}{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp pingResponse
	if err := s.conn.Invoke(ctx, methodPing, struct{}{}, &resp); err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return &ResponseError{Status: http.StatusUnauthorized, Message: st.Message()}
	case codes.PermissionDenied:
		return &ResponseError{Status: http.StatusForbidden, Message: st.Message()}
	case codes.Unavailable, codes.DeadlineExceeded:
		return unavailable(err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return &ResponseError{Status: http.StatusBadRequest, Message: st.Message()}
	case codes.NotFound:
		return &ResponseError{Status: http.StatusNotFound, Message: st.Message()}
	case codes.AlreadyExists:
		return &ResponseError{Status: http.StatusConflict, Message: st.Message()}
	default:
		return &ResponseError{Status: http.StatusInternalServerError, Message: st.Message()}
	}
}
