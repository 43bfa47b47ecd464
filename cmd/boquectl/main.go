package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/viant/boque/model/task"
	"github.com/viant/boque/service/messaging/zmq"
)

var (
	addr    string
	request task.Request
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "boquectl",
	Short: "Submits a named task to a boque daemon.",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := json.Marshal(request)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		fmt.Printf("Sending request to %v\n", addr)
		reply, err := zmq.Submit(ctx, addr, payload)
		if err != nil {
			return err
		}
		fmt.Printf("Receive: %v\n", reply)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "tcp://localhost:5555", "Server to connect to")
	rootCmd.Flags().StringVar(&request.Name, "name", "", "Name of the task")
	rootCmd.Flags().StringVar(&request.Cmd, "cmd", "", "Cmd of the task")
	rootCmd.Flags().StringVar(&request.Resource, "resource", "", "Resource required")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Time to wait for the reply")
	_ = rootCmd.MarkFlagRequired("name")
	_ = rootCmd.MarkFlagRequired("cmd")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
