package remote

import (
	"net/rpc"

	"gray4bin/pkg/proto"
)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{addr: addr, rpc: client}, nil
}

var _ proto.Sink = (*Client)(nil)

type Client struct {
	addr string
	rpc  *rpc.Client
}

func (c *Client) Name() string {
	return "remote:" + c.addr
}

func (c *Client) Send(frame []byte) error {
	return c.rpc.Call("Service.DrawFrame", &DrawFrameRequest{Frame: frame}, &EmptyResponse{})
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
