package commands

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/industrial-go/opcua/internal/ua/transport"
	"github.com/industrial-go/opcua/internal/ua/types"
)

// errUnexpectedAck is returned when the server's reply to HEL is not an ACK
// or ERR chunk.
var errUnexpectedAck = errors.New("uactl: unexpected reply to Hello")

func connectCmd() *cobra.Command {
	var endpointURL string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Perform a Hello/Acknowledge handshake against the server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if endpointURL == "" {
				endpointURL = "opc.tcp://" + serverAddr
			}

			conn, err := net.DialTimeout("tcp", serverAddr, dialTimeout)
			if err != nil {
				return fmt.Errorf("dial %s: %w", serverAddr, err)
			}
			defer conn.Close()

			ack, err := hello(conn, endpointURL)
			if err != nil {
				return err
			}
			defer transport.ReleaseChunk(ack)

			fmt.Printf("connected to %s\n", serverAddr)
			fmt.Printf("  endpoint:     %s\n", endpointURL)
			fmt.Printf("  ack payload:  %d bytes\n", len(ack.Body))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpointURL, "endpoint-url", "", "endpoint URL to advertise in Hello (defaults to opc.tcp://<addr>)")
	return cmd
}

// hello writes a Hello chunk over conn and reads back the server's reply,
// applying dialTimeout as a read deadline. It returns an error if the
// reply is not an Acknowledge chunk.
func hello(conn net.Conn, endpointURL string) (transport.Chunk, error) {
	hel := transport.Chunk{
		MessageType: transport.MessageTypeHello,
		ChunkType:   transport.ChunkTypeFinal,
		Body:        []byte(endpointURL),
	}
	if err := transport.WriteChunk(conn, hel); err != nil {
		return transport.Chunk{}, fmt.Errorf("write Hello: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(dialTimeout)); err != nil {
		return transport.Chunk{}, fmt.Errorf("set read deadline: %w", err)
	}

	reply, err := transport.ReadChunk(conn, types.DefaultEncodingLimits())
	if err != nil {
		return transport.Chunk{}, fmt.Errorf("read Acknowledge: %w", err)
	}

	if reply.MessageType != transport.MessageTypeAcknowledge {
		transport.ReleaseChunk(reply)
		return transport.Chunk{}, fmt.Errorf("%w: got %q", errUnexpectedAck, reply.MessageType)
	}

	return reply, nil
}
