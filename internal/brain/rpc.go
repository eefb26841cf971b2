package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"bugout/internal/domain"
	"bugout/internal/rules"
)

const genMoveMethod = "/bugout.Brain/GenMove"

// genMoveRequest travels as a protobuf Struct built from its JSON form.
type genMoveRequest struct {
	BoardSize int               `json:"boardSize"`
	Player    domain.Player     `json:"player"`
	Moves     []domain.MoveMade `json:"moves"`
}

type genMoveResponse struct {
	Coord domain.MoveCoord `json:"coord"`
}

// Client asks a remote brain for moves.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

func NewClient(addr string, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("brain client %s: %w", addr, err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

func newClientFromConn(conn *grpc.ClientConn, timeout time.Duration) *Client {
	return &Client{conn: conn, timeout: timeout}
}

func (c *Client) GenMove(ctx context.Context, state domain.GameState, player domain.Player) (domain.MoveCoord, error) {
	req, err := toStruct(genMoveRequest{BoardSize: state.Board.Size, Player: player, Moves: state.Moves})
	if err != nil {
		return domain.MoveCoord{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, genMoveMethod, req, resp); err != nil {
		return domain.MoveCoord{}, fmt.Errorf("gen move: %w", err)
	}
	var out genMoveResponse
	if err := fromStruct(resp, &out); err != nil {
		return domain.MoveCoord{}, err
	}
	return out.Coord, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// BrainServer is the server side of the GenMove call.
type BrainServer interface {
	GenMove(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// Server exposes a MoveGenerator over gRPC.
type Server struct {
	gen MoveGenerator
	log *zap.SugaredLogger
}

func NewServer(gen MoveGenerator, log *zap.SugaredLogger) *Server {
	return &Server{gen: gen, log: log}
}

func (s *Server) GenMove(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req genMoveRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	state, err := rules.Replay(req.BoardSize, req.Moves)
	if err != nil {
		return nil, fmt.Errorf("rebuild game: %w", err)
	}
	coord, err := s.gen.GenMove(ctx, state, req.Player)
	if err != nil {
		return nil, err
	}
	s.log.Debugw("generated move", "player", req.Player.String(), "turn", state.Turn, "coord", coord.String())
	return toStruct(genMoveResponse{Coord: coord})
}

func Register(gs *grpc.Server, srv BrainServer) {
	gs.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "bugout.Brain",
	HandlerType: (*BrainServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenMove", Handler: genMoveHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "brain",
}

func genMoveHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrainServer).GenMove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: genMoveMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BrainServer).GenMove(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func fromStruct(s *structpb.Struct, dst interface{}) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
