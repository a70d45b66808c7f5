package relayer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transaction states reported by the relayer. A transaction is terminal
// once it reaches executed, mined, confirmed or failed.
const (
	StateNew       = "STATE_NEW"
	StateExecuted  = "STATE_EXECUTED"
	StateMined     = "STATE_MINED"
	StateConfirmed = "STATE_CONFIRMED"
	StateFailed    = "STATE_FAILED"
)

// Wallet types understood by the relayer.
const (
	walletTypeSafe  = "SAFE"
	walletTypeProxy = "PROXY"
)

// SafeTransaction is a single call to execute through the proxy wallet.
type SafeTransaction struct {
	To        common.Address
	Operation uint8 // 0 = Call, 1 = DelegateCall
	Data      []byte
	Value     *big.Int
}

// TransactionRequest is the body posted to /submit.
type TransactionRequest struct {
	Type            string           `json:"type"`
	From            string           `json:"from"`
	To              string           `json:"to"`
	ProxyWallet     string           `json:"proxyWallet,omitempty"`
	Data            string           `json:"data"`
	Nonce           string           `json:"nonce,omitempty"`
	Signature       string           `json:"signature"`
	SignatureParams *SignatureParams `json:"signatureParams"`
	Metadata        string           `json:"metadata,omitempty"`
}

// SignatureParams carries the Safe transaction gas parameters. The
// relayer pays gas, so everything is zero on our side.
type SignatureParams struct {
	GasPrice        string `json:"gasPrice"`
	SafeTxnGas      string `json:"safeTxnGas"`
	BaseGas         string `json:"baseGas"`
	PaymentToken    string `json:"paymentToken,omitempty"`
	Payment         string `json:"payment,omitempty"`
	PaymentReceiver string `json:"paymentReceiver,omitempty"`
}

// RelayerTransaction describes a submitted transaction as tracked by
// the relayer.
type RelayerTransaction struct {
	ID              string `json:"transactionID"`
	TransactionHash string `json:"transactionHash"`
	State           string `json:"state"`
	From            string `json:"from"`
	To              string `json:"to"`
	Error           string `json:"error,omitempty"`
}

// Terminal reports whether the transaction has reached a final state.
func (t *RelayerTransaction) Terminal() bool {
	switch t.State {
	case StateExecuted, StateMined, StateConfirmed, StateFailed:
		return true
	}
	return false
}

// Succeeded reports whether the transaction completed without failure.
// Only meaningful once Terminal returns true.
func (t *RelayerTransaction) Succeeded() bool {
	return t.Terminal() && t.State != StateFailed
}

// SubmitResponse is returned by /submit and /deploy.
type SubmitResponse struct {
	ID              string `json:"transactionID"`
	TransactionHash string `json:"transactionHash"`
	State           string `json:"state"`
	Error           string `json:"error,omitempty"`
}

type nonceResponse struct {
	Nonce string `json:"nonce"`
}

type deployedResponse struct {
	Deployed bool `json:"deployed"`
}

type addressResponse struct {
	Address string `json:"address"`
}
