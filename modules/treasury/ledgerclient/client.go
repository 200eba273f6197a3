package ledgerclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common"
	"github.com/treasury-network/treasury-engine/common/errs"
	"github.com/treasury-network/treasury-engine/modules/treasury/ledger"
	"github.com/treasury-network/treasury-engine/pkg/httpclient"
	"github.com/valyala/fasthttp"
)

// Make sure Client implements the Gateway interface
var _ ledger.Gateway = (*Client)(nil)

// Client talks JSON-RPC to a remote cluster endpoint. It owns the mapping
// from remote failures to the engine's error taxonomy; the engine itself
// never retries a transport failure.
type Client struct {
	httpClient *httpclient.Client
	commitment common.Commitment
}

func New(endpoint string, commitment common.Commitment) (*Client, error) {
	if !commitment.IsSupported() {
		return nil, errors.Wrapf(errs.InvalidArgument, "commitment %q is not supported", commitment)
	}
	httpClient, err := httpclient.New(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cluster endpoint")
	}
	return &Client{
		httpClient: httpClient,
		commitment: commitment,
	}, nil
}

type rpcRequest struct {
	JsonRPC string `json:"jsonrpc"`
	Id      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Remote error codes surfaced by the cluster's treasury program.
const (
	codeAccountNotFound     = -32001
	codeInsufficientBalance = -32002
	codeAlreadyExists       = -32003
)

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JsonRPC: "2.0",
		Id:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return errors.Wrap(err, "can't marshal rpc request")
	}

	resp, err := c.httpClient.Post(ctx, "/", httpclient.RequestOptions{Body: body})
	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return errors.Wrapf(errs.Timeout, "rpc %s: %v", method, err)
		}
		return errors.Wrapf(errs.Transport, "rpc %s: %v", method, err)
	}
	if resp.StatusCode() >= 400 {
		return errors.Wrapf(errs.Transport, "rpc %s: http status %d", method, resp.StatusCode())
	}

	var rpcResp rpcResponse
	if err := resp.UnmarshalBody(&rpcResp); err != nil {
		return errors.Wrapf(errs.Transport, "rpc %s: %v", method, err)
	}
	if rpcResp.Error != nil {
		switch rpcResp.Error.Code {
		case codeAccountNotFound:
			return errors.Wrapf(errs.NotFound, "rpc %s: %s", method, rpcResp.Error.Message)
		case codeInsufficientBalance:
			return errors.Wrapf(errs.InsufficientBalance, "rpc %s: %s", method, rpcResp.Error.Message)
		case codeAlreadyExists:
			return errors.Wrapf(errs.ConflictSetting, "rpc %s: %s", method, rpcResp.Error.Message)
		default:
			return errors.Wrapf(errs.Transport, "rpc %s: code %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
		}
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return errors.Wrapf(errs.Transport, "rpc %s: can't unmarshal result: %v", method, err)
		}
	}
	return nil
}

type accountStateResult struct {
	Owner          string `json:"owner"`
	Balance        uint64 `json:"balance"`
	WithheldAmount uint64 `json:"withheldAmount"`
}

func (c *Client) GetBalance(ctx context.Context, account ledger.Address) (uint64, error) {
	snapshot, err := c.GetAccount(ctx, account)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return snapshot.Balance, nil
}

func (c *Client) GetWithheldFee(ctx context.Context, account ledger.Address) (uint64, error) {
	snapshot, err := c.GetAccount(ctx, account)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return snapshot.WithheldAmount, nil
}

func (c *Client) GetAccount(ctx context.Context, account ledger.Address) (*ledger.AccountSnapshot, error) {
	var result accountStateResult
	params := []any{account.String(), map[string]any{"commitment": c.commitment.String()}}
	if err := c.call(ctx, "getAccountState", params, &result); err != nil {
		return nil, errors.WithStack(err)
	}
	return &ledger.AccountSnapshot{
		Address:        account,
		Owner:          ledger.Address(result.Owner),
		Balance:        result.Balance,
		WithheldAmount: result.WithheldAmount,
	}, nil
}

func (c *Client) AccountExists(ctx context.Context, account ledger.Address) (bool, error) {
	_, err := c.GetAccount(ctx, account)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return true, nil
}

type submitResult struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
}

func (c *Client) Submit(ctx context.Context, op ledger.Operation, signers []ledger.Signer) (*ledger.Confirmation, error) {
	payload, err := json.Marshal(op)
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal operation")
	}

	signatures := make([]map[string]string, 0, len(signers))
	for _, signer := range signers {
		signatures = append(signatures, map[string]string{
			"address":   signer.Address().String(),
			"signature": base64.StdEncoding.EncodeToString(signer.Sign(payload)),
		})
	}

	var result submitResult
	params := []any{
		json.RawMessage(payload),
		signatures,
		map[string]any{"commitment": c.commitment.String()},
	}
	if err := c.call(ctx, "submitOperation", params, &result); err != nil {
		return nil, errors.WithStack(err)
	}
	return &ledger.Confirmation{Signature: result.Signature, Slot: result.Slot}, nil
}

type createAccountResult struct {
	Address string `json:"address"`
	Owner   string `json:"owner"`
}

func (c *Client) CreateAccount(ctx context.Context, owner ledger.Address, space uint64, funding ledger.Signer) (ledger.AccountRef, error) {
	keypair, err := ledger.NewKeypair()
	if err != nil {
		return ledger.AccountRef{}, errors.WithStack(err)
	}

	payload, err := json.Marshal(map[string]any{
		"newAccount": keypair.Address().String(),
		"owner":      owner.String(),
		"space":      space,
		"funder":     funding.Address().String(),
	})
	if err != nil {
		return ledger.AccountRef{}, errors.Wrap(err, "can't marshal create account request")
	}

	var result createAccountResult
	params := []any{
		json.RawMessage(payload),
		[]map[string]string{
			{
				"address":   funding.Address().String(),
				"signature": base64.StdEncoding.EncodeToString(funding.Sign(payload)),
			},
			{
				"address":   keypair.Address().String(),
				"signature": base64.StdEncoding.EncodeToString(keypair.Sign(payload)),
			},
		},
	}
	if err := c.call(ctx, "createAccount", params, &result); err != nil {
		return ledger.AccountRef{}, errors.WithStack(err)
	}
	return ledger.AccountRef{
		Address: ledger.Address(result.Address),
		Owner:   ledger.Address(result.Owner),
	}, nil
}

func (c *Client) InitializeMint(ctx context.Context, init ledger.MintInit, signers []ledger.Signer) (*ledger.Confirmation, error) {
	payload, err := json.Marshal(map[string]any{
		"mint":           init.Mint.String(),
		"decimals":       init.Decimals,
		"feeBasisPoints": init.FeeBasisPoints,
		"feeCap":         init.FeeCap,
		"metadata":       init.Metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't marshal initialize mint request")
	}

	signatures := make([]map[string]string, 0, len(signers))
	for _, signer := range signers {
		signatures = append(signatures, map[string]string{
			"address":   signer.Address().String(),
			"signature": base64.StdEncoding.EncodeToString(signer.Sign(payload)),
		})
	}

	var result submitResult
	params := []any{json.RawMessage(payload), signatures}
	if err := c.call(ctx, "initializeMint", params, &result); err != nil {
		return nil, errors.WithStack(err)
	}
	return &ledger.Confirmation{Signature: result.Signature, Slot: result.Slot}, nil
}

// Endpoint returns the configured cluster endpoint, for logging.
func (c *Client) Endpoint() string {
	return strings.TrimSuffix(c.httpClient.BaseURL().String(), "/")
}
