package commands

import (
	"crypto/rand"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/industrial-go/opcua/internal/ua/transport"
)

// clientNonceLength matches the server's nonce length for OpenSecureChannel
// exchanges.
const clientNonceLength = 32

func openChannelCmd() *cobra.Command {
	var endpointURL string

	cmd := &cobra.Command{
		Use:   "open-channel",
		Short: "Open and immediately close a secure channel against the server",
		Long: "Drives a full Hello/Acknowledge + OpenSecureChannel + CloseSecureChannel\n" +
			"exchange. The server does not reply to OPN/CLO chunks (no service-message\n" +
			"encoding above the chunk boundary), so success is reported once the server\n" +
			"closes the connection in response to CLO.",
		Args: cobra.NoArgs,
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
			transport.ReleaseChunk(ack)

			clientNonce := make([]byte, clientNonceLength)
			if _, err := rand.Read(clientNonce); err != nil {
				return fmt.Errorf("generate client nonce: %w", err)
			}

			opn := transport.Chunk{
				MessageType:     transport.MessageTypeOpenChannel,
				ChunkType:       transport.ChunkTypeFinal,
				SecureChannelID: 0,
				TokenID:         0,
				SequenceNumber:  1,
				RequestID:       1,
				Body:            clientNonce,
			}
			if err := transport.WriteChunk(conn, opn); err != nil {
				return fmt.Errorf("write OpenSecureChannel: %w", err)
			}

			clo := transport.Chunk{
				MessageType:     transport.MessageTypeCloseChannel,
				ChunkType:       transport.ChunkTypeFinal,
				SecureChannelID: 1,
				TokenID:         1,
				SequenceNumber:  2,
				RequestID:       2,
			}
			if err := transport.WriteChunk(conn, clo); err != nil {
				return fmt.Errorf("write CloseSecureChannel: %w", err)
			}

			if err := conn.SetReadDeadline(time.Now().Add(dialTimeout)); err != nil {
				return fmt.Errorf("set read deadline: %w", err)
			}
			buf := make([]byte, 1)
			if _, err := conn.Read(buf); err == nil {
				return fmt.Errorf("uactl: server kept connection open after CloseSecureChannel")
			}

			fmt.Printf("secure channel opened and closed against %s\n", serverAddr)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpointURL, "endpoint-url", "", "endpoint URL to advertise in Hello (defaults to opc.tcp://<addr>)")
	return cmd
}
