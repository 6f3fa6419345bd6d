// uactl is the command-line client for the OPC UA server.
package main

import "github.com/industrial-go/opcua/cmd/uactl/commands"

func main() {
	commands.Execute()
}
