package chain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Clock reports the ledger's monotonic tick.
type Clock interface {
	Now(ctx context.Context) (uint64, error)
}

// ManualClock is a tick counter advanced explicitly.
type ManualClock struct {
	tick atomic.Uint64
}

func NewManualClock(start uint64) *ManualClock {
	c := &ManualClock{}
	c.tick.Store(start)
	return c
}

func (c *ManualClock) Now(context.Context) (uint64, error) {
	return c.tick.Load(), nil
}

// Set moves the clock to tick if it is ahead of the current value.
func (c *ManualClock) Set(tick uint64) {
	for {
		cur := c.tick.Load()
		if tick <= cur || c.tick.CompareAndSwap(cur, tick) {
			return
		}
	}
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (c *ManualClock) Advance(n uint64) uint64 {
	return c.tick.Add(n)
}

// RPCClock uses the latest block height of an EVM-compatible node as the tick.
type RPCClock struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	mu   sync.Mutex
	last uint64
}

// NewRPCClock dials the RPC URL.
func NewRPCClock(ctx context.Context, rpcURL string) (*RPCClock, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	return &RPCClock{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *RPCClock) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// Now returns the latest block number, never lower than a previously returned value.
func (c *RPCClock) Now(ctx context.Context) (uint64, error) {
	number, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("get latest block: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if number < c.last {
		return c.last, nil
	}
	c.last = number
	return number, nil
}
