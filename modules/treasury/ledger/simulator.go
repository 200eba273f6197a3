package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common/errs"
)

// Make sure Simulator implements the Gateway interface
var _ Gateway = (*Simulator)(nil)

// Simulator is an in-process ledger used for dry runs and tests. It applies
// the token program's accounting rules (fee withholding, supply tracking)
// deterministically, without a network.
type Simulator struct {
	mu       sync.Mutex
	program  Address
	accounts map[Address]*simAccount
	mints    map[Address]*simMint
	slot     uint64
	sigSeq   uint64
}

type simAccount struct {
	owner    Address
	balance  uint64
	withheld uint64
}

type simMint struct {
	decimals uint8
	supply   uint64
	withheld uint64 // fees harvested to the mint
}

// NewSimulator creates an empty simulated ledger. program is the owning
// token program id assigned to created accounts.
func NewSimulator(program Address) *Simulator {
	return &Simulator{
		program:  program,
		accounts: make(map[Address]*simAccount),
		mints:    make(map[Address]*simMint),
	}
}

// Program returns the token program id accounts are owned by.
func (s *Simulator) Program() Address {
	return s.program
}

// SeedAccount creates or replaces an account with the given state. Test and
// dry-run setup helper.
func (s *Simulator) SeedAccount(address Address, owner Address, balance, withheld uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[address] = &simAccount{owner: owner, balance: balance, withheld: withheld}
}

func (s *Simulator) GetBalance(_ context.Context, account Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[account]
	if !ok {
		return 0, errors.Wrapf(errs.NotFound, "account %s", account)
	}
	return acc.balance, nil
}

func (s *Simulator) GetWithheldFee(_ context.Context, account Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[account]
	if !ok {
		return 0, errors.Wrapf(errs.NotFound, "account %s", account)
	}
	return acc.withheld, nil
}

func (s *Simulator) GetAccount(_ context.Context, account Address) (*AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[account]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "account %s", account)
	}
	return &AccountSnapshot{
		Address:        account,
		Owner:          acc.owner,
		Balance:        acc.balance,
		WithheldAmount: acc.withheld,
	}, nil
}

func (s *Simulator) AccountExists(_ context.Context, account Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[account]
	if !ok {
		_, ok = s.mints[account]
	}
	return ok, nil
}

func (s *Simulator) Submit(_ context.Context, op Operation, _ []Signer) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch op.Type {
	case OpMintTo:
		mint, ok := s.mints[op.Mint]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "mint %s", op.Mint)
		}
		dest, ok := s.accounts[op.Destination]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "account %s", op.Destination)
		}
		mint.supply += op.Amount
		dest.balance += op.Amount
	case OpTransferWithFee:
		source, ok := s.accounts[op.Source]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "account %s", op.Source)
		}
		dest, ok := s.accounts[op.Destination]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "account %s", op.Destination)
		}
		if source.balance < op.Amount {
			return nil, errors.Wrapf(errs.InsufficientBalance, "account %s: balance %d < %d", op.Source, source.balance, op.Amount)
		}
		if op.Fee > op.Amount {
			return nil, errors.Wrapf(errs.InvalidArgument, "fee %d exceeds amount %d", op.Fee, op.Amount)
		}
		source.balance -= op.Amount
		dest.balance += op.Amount - op.Fee
		dest.withheld += op.Fee
	case OpWithdrawWithheldFees:
		dest, ok := s.accounts[op.Destination]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "account %s", op.Destination)
		}
		for _, src := range op.Sources {
			acc, ok := s.accounts[src]
			if !ok {
				continue
			}
			dest.balance += acc.withheld
			acc.withheld = 0
		}
	case OpHarvestToMint:
		mint, ok := s.mints[op.Mint]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "mint %s", op.Mint)
		}
		source, ok := s.accounts[op.Source]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "account %s", op.Source)
		}
		if source.withheld < op.Amount {
			return nil, errors.Wrapf(errs.InsufficientBalance, "account %s: withheld %d < %d", op.Source, source.withheld, op.Amount)
		}
		source.withheld -= op.Amount
		mint.withheld += op.Amount
	case OpBurn:
		mint, ok := s.mints[op.Mint]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "mint %s", op.Mint)
		}
		source, ok := s.accounts[op.Source]
		if !ok {
			return nil, errors.Wrapf(errs.NotFound, "account %s", op.Source)
		}
		if source.balance < op.Amount {
			return nil, errors.Wrapf(errs.InsufficientBalance, "account %s: balance %d < %d", op.Source, source.balance, op.Amount)
		}
		source.balance -= op.Amount
		if mint.supply < op.Amount {
			mint.supply = 0
		} else {
			mint.supply -= op.Amount
		}
	default:
		return nil, errors.Wrapf(errs.Unsupported, "operation %q", op.Type)
	}

	return s.confirm(), nil
}

func (s *Simulator) CreateAccount(_ context.Context, owner Address, _ uint64, funding Signer) (AccountRef, error) {
	keypair, err := NewKeypair()
	if err != nil {
		return AccountRef{}, errors.WithStack(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	address := keypair.Address()
	if _, ok := s.accounts[address]; ok {
		return AccountRef{}, errors.Wrapf(errs.ConflictSetting, "account %s already exists", address)
	}
	s.accounts[address] = &simAccount{owner: owner}
	_ = funding
	return AccountRef{Address: address, Owner: owner}, nil
}

func (s *Simulator) InitializeMint(_ context.Context, init MintInit, _ []Signer) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mints[init.Mint]; ok {
		return nil, errors.Wrapf(errs.ConflictSetting, "mint %s already initialized", init.Mint)
	}
	s.mints[init.Mint] = &simMint{decimals: init.Decimals}
	return s.confirm(), nil
}

// Supply returns the current total supply of a mint.
func (s *Simulator) Supply(mint Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mints[mint]
	if !ok {
		return 0
	}
	return m.supply
}

// confirm advances the simulated slot and issues a synthetic signature.
// Caller must hold the mutex.
func (s *Simulator) confirm() *Confirmation {
	s.slot++
	s.sigSeq++
	return &Confirmation{
		Signature: fmt.Sprintf("sim-%016d", s.sigSeq),
		Slot:      s.slot,
	}
}
