// cmd/kvcli is the CLI entry-point built with Cobra.
//
// Usage:
//
//	kvcli put mykey "hello world" --ttl 30s --ns app1 --server http://localhost:8080
//	kvcli get mykey                          --ns app1 --server http://localhost:8080
//	kvcli delete mykey                       --ns app1 --server http://localhost:8080
//	kvcli stats                              --ns app1
//	kvcli namespaces
//	kvcli compact
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agilira/kvnest/internal/client"
)

var (
	serverAddr string
	timeout    time.Duration
	namespace  string
)

func main() {
	root := &cobra.Command{
		Use:   "kvcli",
		Short: "CLI client for the kvnest store",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"http://localhost:8080", "kvnest server address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")
	root.PersistentFlags().StringVar(&namespace, "ns", "", "namespace (default: unnamed)")

	root.AddCommand(putCmd(), getCmd(), deleteCmd(), statsCmd(), namespacesCmd(), compactCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func putCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.Put(context.Background(), namespace, args[0], args[1], ttl)
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "time-to-live (0 means no expiry)")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve a value by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.Get(context.Background(), namespace, args[0])
			if err == client.ErrNotFound {
				fmt.Printf("key %q not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			err := c.Delete(context.Background(), namespace, args[0])
			if err == client.ErrNotFound {
				fmt.Printf("key %q not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("deleted %q\n", args[0])
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.GetStats(context.Background(), namespace)
			if err != nil {
				return err
			}
			prettyPrint(resp)
			return nil
		},
	}
}

func namespacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "namespaces",
		Short: "List namespaces with at least one live key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			names, err := c.ListNamespaces(context.Background())
			if err != nil {
				return err
			}
			prettyPrint(names)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <namespace>",
		Short: "Delete every key in a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			removed, err := c.ClearNamespace(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("removed %d keys from %q\n", removed, args[0])
			return nil
		},
	})
	return cmd
}

func compactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Trigger a WAL compaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			if err := c.Compact(context.Background()); err != nil {
				return err
			}
			fmt.Println("compaction complete")
			return nil
		},
	}
}

func prettyPrint(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(data))
}
