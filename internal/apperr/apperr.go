package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jrpc "github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Kind is the closed taxonomy every failure surfaced to a user maps onto.
type Kind string

const (
	KindWalletConnection    Kind = "WALLET_CONNECTION"
	KindTransaction         Kind = "TRANSACTION"
	KindValidation          Kind = "VALIDATION"
	KindNetwork             Kind = "NETWORK"
	KindRateLimit           Kind = "RATE_LIMIT"
	KindInsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	KindUnknown             Kind = "UNKNOWN"
)

// Error is a classified error. Message is the fixed user-facing text for the
// kind; Raw keeps the underlying failure for debug logging only and must not
// be shown to users.
type Error struct {
	Kind       Kind
	Message    string
	Field      string
	RetryAfter time.Duration
	Raw        error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Raw }

// Suggestions returns the fixed recovery actions for the error's kind.
func (e *Error) Suggestions() []string { return suggestions[e.Kind] }

// userMessages maps each kind to exactly one user-facing message.
var userMessages = map[Kind]string{
	KindWalletConnection:    "Wallet is not connected",
	KindTransaction:         "Transaction failed",
	KindValidation:          "Invalid input",
	KindNetwork:             "Network request failed",
	KindRateLimit:           "Too many requests, please slow down",
	KindInsufficientBalance: "Insufficient balance for this action",
	KindUnknown:             "Something went wrong",
}

var suggestions = map[Kind][]string{
	KindWalletConnection: {
		"Connect your wallet",
		"Check that your wallet keypair file exists",
	},
	KindTransaction: {
		"Try the action again",
		"Check the explorer for the transaction status",
		"Switch to a different RPC endpoint",
	},
	KindValidation: {
		"Correct the highlighted field",
		"Check the allowed value range",
	},
	KindNetwork: {
		"Check your internet connection",
		"Retry in a few seconds",
		"Switch to a different RPC endpoint",
	},
	KindRateLimit: {
		"Wait before retrying",
		"Batch your actions less aggressively",
	},
	KindInsufficientBalance: {
		"Add more funds",
		"Choose a lower price",
	},
	KindUnknown: {
		"Retry the action",
		"Report the issue if it persists",
	},
}

// New builds a classified error of the given kind with the kind's fixed
// user message, keeping raw for diagnostics.
func New(kind Kind, raw error) *Error {
	return &Error{Kind: kind, Message: userMessages[kind], Raw: raw}
}

// NewValidation builds a VALIDATION error naming the offending field. The
// message overrides the generic one so the user sees what to fix.
func NewValidation(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// NewRateLimit builds a RATE_LIMIT error carrying the remaining wait.
func NewRateLimit(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindRateLimit,
		Message:    userMessages[KindRateLimit],
		RetryAfter: retryAfter,
	}
}

// Solana RPC error codes worth recognizing on send. -32002 is the preflight
// failure code; 429 shows up from throttling proxies.
const (
	rpcCodePreflightFailure = -32002
	rpcCodeRateLimited      = 429
)

// Classify maps a heterogeneous failure onto the taxonomy. Structural checks
// run before substring heuristics; already-classified errors pass through.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var rpcErr *jrpc.RPCError
	if errors.As(err, &rpcErr) && rpcErr != nil {
		switch rpcErr.Code {
		case rpcCodeRateLimited:
			return New(KindRateLimit, err)
		case rpcCodePreflightFailure:
			if containsInsufficientFunds(rpcErr.Message) {
				return New(KindInsufficientBalance, err)
			}
			return New(KindTransaction, err)
		default:
			return New(KindTransaction, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindNetwork, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsInsufficientFunds(msg):
		return New(KindInsufficientBalance, err)
	case strings.Contains(msg, "network"), strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return New(KindNetwork, err)
	}

	return New(KindUnknown, err)
}

func containsInsufficientFunds(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "insufficient lamports") ||
		strings.Contains(m, "insufficient funds")
}
