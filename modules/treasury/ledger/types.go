package ledger

import (
	"github.com/btcsuite/btcd/btcutil/base58"
)

// Address is a base58-encoded 32-byte account address.
type Address string

func (a Address) String() string {
	return string(a)
}

// Bytes decodes the address back to its raw 32 bytes.
func (a Address) Bytes() []byte {
	return base58.Decode(string(a))
}

// AddressFromBytes encodes raw key bytes as a base58 address.
func AddressFromBytes(b []byte) Address {
	return Address(base58.Encode(b))
}

// AccountRef identifies a ledger account together with its owning program.
// Ownership here is a lookup key, not a resource the engine manages.
type AccountRef struct {
	Address Address
	Owner   Address
}

// AccountSnapshot is the state of an account observed at a point in time.
// Snapshots are always fetched fresh before a scheduling decision, never
// cached across operations.
type AccountSnapshot struct {
	Address        Address
	Owner          Address
	Balance        uint64
	WithheldAmount uint64
}

type OperationType string

const (
	OpMintTo               OperationType = "mint_to"
	OpTransferWithFee      OperationType = "transfer_with_fee"
	OpWithdrawWithheldFees OperationType = "withdraw_withheld_fees"
	OpHarvestToMint        OperationType = "harvest_to_mint"
	OpBurn                 OperationType = "burn"
)

func (t OperationType) String() string {
	return string(t)
}

// Operation is a tagged variant over the ledger operations the engine can
// issue. It is created by the scheduler, consumed exactly once by the
// gateway, then discarded.
type Operation struct {
	Type OperationType

	// Mint is the asset mint account the operation applies to.
	Mint Address

	// Source and Destination are operand accounts; which ones are set
	// depends on Type.
	Source      Address
	Destination Address

	// Sources holds the accounts drained by a batched withdraw.
	Sources []Address

	// Amount is the operand amount in the asset's smallest unit.
	Amount uint64

	// Fee is the fee charged on a transfer-with-fee.
	Fee uint64

	// Decimals of the asset, checked by the remote program on transfers.
	Decimals uint8
}

func NewMintTo(mint, destination Address, amount uint64) Operation {
	return Operation{Type: OpMintTo, Mint: mint, Destination: destination, Amount: amount}
}

func NewTransferWithFee(mint, source, destination Address, amount, fee uint64, decimals uint8) Operation {
	return Operation{Type: OpTransferWithFee, Mint: mint, Source: source, Destination: destination, Amount: amount, Fee: fee, Decimals: decimals}
}

func NewWithdrawWithheldFees(mint, destination Address, sources []Address) Operation {
	return Operation{Type: OpWithdrawWithheldFees, Mint: mint, Destination: destination, Sources: sources}
}

func NewHarvestToMint(mint, source Address, amount uint64) Operation {
	return Operation{Type: OpHarvestToMint, Mint: mint, Source: source, Amount: amount}
}

func NewBurn(mint, source Address, amount uint64, decimals uint8) Operation {
	return Operation{Type: OpBurn, Mint: mint, Source: source, Amount: amount, Decimals: decimals}
}

// Confirmation is returned by the gateway once an operation is confirmed at
// the configured commitment level.
type Confirmation struct {
	Signature string
	Slot      uint64
}

// MintInit carries the parameters to initialize a new asset mint account.
type MintInit struct {
	Mint           Address
	Decimals       uint8
	FeeBasisPoints uint16
	FeeCap         uint64
	Metadata       Metadata
}

// Metadata is the asset metadata stored alongside the mint account.
// Byte packing is the remote program's concern, not ours.
type Metadata struct {
	Name   string            `json:"name"`
	Symbol string            `json:"symbol"`
	URI    string            `json:"uri"`
	Extra  map[string]string `json:"extra,omitempty"`
}
