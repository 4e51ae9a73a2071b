package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	transports "github.com/AndreVRibeiro/tinySSB-miniAppBundles/internal/cmd/client/transports"
)

var errLimitReached = errors.New("limit reached")

// newSendCommand constructs the `send` command. Arguments are joined into one
// command line; with --stdin every input line is sent separately.
func newSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [verb args...]",
		Short: "Send a frontend command line to the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromStdin, _ := cmd.Flags().GetBool("stdin")
			t := getTransport()
			ctx := cmd.Context()
			if !fromStdin {
				if len(args) == 0 {
					return fmt.Errorf("missing command line")
				}
				if err := t.Dispatch(ctx, strings.Join(args, " ")); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
				return nil
			}
			sc := bufio.NewScanner(cmd.InOrStdin())
			sent := 0
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				if err := t.Dispatch(ctx, line); err != nil {
					return fmt.Errorf("line %d: %w", sent+1, err)
				}
				sent++
			}
			if err := sc.Err(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status: OK (%d lines)\n", sent)
			return nil
		},
	}
	cmd.Flags().Bool("stdin", false, "Read command lines from stdin")
	return cmd
}

// newTailCommand constructs the `tail` command. Calls are printed as JSON
// lines. With a group and without --no-ack each call is acknowledged after
// it is printed.
func newTailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream UI calls from the bridge",
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, _ := cmd.Flags().GetString("group")
			filter, _ := cmd.Flags().GetString("filter")
			from, _ := cmd.Flags().GetString("from")
			limit, _ := cmd.Flags().GetInt("limit")
			noAck, _ := cmd.Flags().GetBool("no-ack")
			if from != "" && from != "earliest" && from != "latest" {
				return fmt.Errorf("invalid --from; use earliest|latest")
			}
			ctx := cmd.Context()
			t := getTransport()
			enc := json.NewEncoder(cmd.OutOrStdout())
			ack := group != "" && !noAck
			seen := 0
			err := t.Subscribe(ctx, transports.SubscribeRequest{Group: group, Filter: filter, From: from},
				func(g string, c transports.Call) error {
					if err := enc.Encode(c); err != nil {
						return err
					}
					if ack {
						if err := t.Ack(ctx, g, c.Seq); err != nil {
							return fmt.Errorf("ack %d: %w", c.Seq, err)
						}
					}
					seen++
					if limit > 0 && seen >= limit {
						return errLimitReached
					}
					return nil
				})
			if errors.Is(err, errLimitReached) || (err != nil && ctx.Err() != nil) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().String("group", "", "Cursor group (empty for an anonymous tail)")
	cmd.Flags().String("filter", "", `CEL filter, e.g. func == "new_event" && app == "KAN"`)
	cmd.Flags().String("from", "earliest", "Start for a new group: earliest|latest")
	cmd.Flags().Int("limit", 0, "Stop after N calls (0 = follow)")
	cmd.Flags().Bool("no-ack", false, "Do not acknowledge calls")
	return cmd
}

// newAckCommand constructs the `ack` command.
func newAckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <group> <seq>",
		Short: "Acknowledge UI calls up to seq for a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seq: %w", err)
			}
			if err := getTransport().Ack(cmd.Context(), args[0], seq); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
}

// newRegistryCommand prints the UI registry snapshot.
func newRegistryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "Show the mini-app UI registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := getTransport().Registry(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reg)
		},
	}
}

// newDecodeCommand renders a BIPF blob given as hex or b64:<base64>.
func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex|b64:...>",
		Short: "Decode a BIPF blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := decodeBlob(args[0])
			if err != nil {
				return err
			}
			v, err := getTransport().Decode(cmd.Context(), blob)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(v)
		},
	}
}

// newHealthCommand prints the gRPC health status.
func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check bridge health over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := getTransport().Health(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", s)
			return nil
		},
	}
}

// newStatusCommand fetches /v1/status from the HTTP API.
func newStatusCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show identity, frontier and outbox state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL()+"/v1/status", nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status: %s: %s", resp.Status, strings.TrimSpace(string(b)))
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
