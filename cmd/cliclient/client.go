package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"net"
	"net/url"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	mandel "github.com/marben/bandmandel"
)

// dial connects to the server over tcp (tcp://host:port) or websocket (ws://host:port/ws).
func dial(ctx context.Context, server string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "tcp":
		var d net.Dialer
		return d.DialContext(ctx, "tcp", u.Host)
	case "ws", "wss":
		c, _, err := websocket.Dial(ctx, server, nil)
		if err != nil {
			return nil, err
		}
		return websocket.NetConn(ctx, c, websocket.MessageBinary), nil
	default:
		return nil, fmt.Errorf("unsupported scheme %q, use tcp:// or ws://", u.Scheme)
	}
}

// fetchImage lends renderer to the server and blocks until the server sends back the fully rendered image.
func fetchImage(ctx context.Context, server string, renderer mandel.Renderer) (*image.Gray, error) {
	conn, err := dial(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	// the server calls our renderer service to render bands using our CPU
	rendererService := mandel.NewRendererIrpcService(renderer)
	ep := irpc.NewEndpoint(conn, irpc.WithEndpointServices(rendererService))
	defer ep.Close()

	client, err := mandel.NewImgProviderIrpcClient(ep)
	if err != nil {
		return nil, fmt.Errorf("failed to create ImgProvider client: %w", err)
	}

	img, err := client.GetImage(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.GetImage: %w", err)
	}
	return img, nil
}
