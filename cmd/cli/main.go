package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/computeledger/internal/infrastructure/auth"
)

const maxErrorBody = 512

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		baseURL string
		token   string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "computeledger-cli",
		Short:         "Compute ledger CLI tool",
		Long:          `A command line interface for authorizing compute debits and auditing the rays ledger.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the compute ledger API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("COMPUTELEDGER_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	client := func() *apiClient {
		return &apiClient{
			baseURL: strings.TrimRight(baseURL, "/"),
			token:   token,
			http:    &http.Client{Timeout: timeout},
		}
	}

	rootCmd.AddCommand(
		newAuthorizeCmd(client),
		newWalletCmd(client),
		newLedgerCmd(client),
		newTokenCmd(),
	)

	return rootCmd
}

func newAuthorizeCmd(client func() *apiClient) *cobra.Command {
	var (
		walletID       string
		taskType       string
		rays           string
		idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Authorize a rays debit for a compute task",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount := json.Number(rays)
			if _, err := strconv.ParseFloat(rays, 64); err != nil {
				return fmt.Errorf("--rays must be a number: %w", err)
			}

			body, err := json.Marshal(map[string]any{
				"walletId":      walletID,
				"taskType":      taskType,
				"estimatedRays": amount,
			})
			if err != nil {
				return err
			}

			headers := map[string]string{"Content-Type": "application/json"}
			if idempotencyKey != "" {
				headers["Idempotency-Key"] = idempotencyKey
			}

			return client().do(cmd.OutOrStdout(), http.MethodPost, "/api/v1/compute/request", bytes.NewReader(body), headers)
		},
	}

	cmd.Flags().StringVar(&walletID, "wallet", "", "Wallet ID")
	cmd.Flags().StringVar(&taskType, "task", "", "Compute task type")
	cmd.Flags().StringVar(&rays, "rays", "", "Estimated rays to debit")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	_ = cmd.MarkFlagRequired("wallet")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("rays")

	return cmd
}

func newWalletCmd(client func() *apiClient) *cobra.Command {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <wallet-id>",
		Short: "Show wallet balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do(cmd.OutOrStdout(), http.MethodGet, "/api/v1/wallets/"+url.PathEscape(args[0]), nil, nil)
		},
	}

	var limit, offset int
	ledgerCmd := &cobra.Command{
		Use:   "ledger <wallet-id>",
		Short: "List ledger entries of a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			path := "/api/v1/wallets/" + url.PathEscape(args[0]) + "/ledger?" + q.Encode()
			return client().do(cmd.OutOrStdout(), http.MethodGet, path, nil, nil)
		},
	}
	ledgerCmd.Flags().IntVar(&limit, "limit", 20, "Page size (max 100)")
	ledgerCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	walletCmd.AddCommand(getCmd, ledgerCmd)
	return walletCmd
}

func newLedgerCmd(client func() *apiClient) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client().do(cmd.OutOrStdout(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	return ledgerCmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret   string
		subject  string
		scopes   []string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a service token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}

			token, err := auth.NewJWTManager(secret, duration).Generate(subject, scopes...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&subject, "subject", "", "Calling service name")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Granted scopes (default: all)")
	cmd.Flags().DurationVar(&duration, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

// do sends a request and pretty-prints the JSON body. Non-2xx statuses are returned as errors
// after the body has been printed, so rejected debits still show their ledger entry.
func (c *apiClient) do(out io.Writer, method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, truncate(string(raw), maxErrorBody))
	}
	printJSON(out, decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request returned status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(out io.Writer, v any) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
