package transactiontypes

import (
	"sync"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

type registry struct {
	lock     sync.RWMutex
	handlers map[externalapi.TransactionType]model.TransactionType
}

// NewRegistry returns an empty TransactionTypeRegistry
func NewRegistry() model.TransactionTypeRegistry {
	return &registry{handlers: make(map[externalapi.TransactionType]model.TransactionType)}
}

// New returns a registry holding a handler for every transaction type
// the network accepts
func New(params *dposconfig.Params, accountManager model.AccountManager) (model.TransactionTypeRegistry, error) {
	r := NewRegistry()
	handlers := []model.TransactionType{
		NewSend(params, accountManager),
		NewSecondSignature(params, accountManager),
		NewDelegate(params, accountManager),
		NewVote(params, accountManager),
		NewMultisignature(params, accountManager),
	}
	for _, handler := range handlers {
		err := r.Register(handler)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *registry) Register(handler model.TransactionType) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.handlers[handler.Type()]; ok {
		return errors.Errorf("a handler for transaction type %s is already registered", handler.Type())
	}
	r.handlers[handler.Type()] = handler
	return nil
}

func (r *registry) Get(transactionType externalapi.TransactionType) (model.TransactionType, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	handler, ok := r.handlers[transactionType]
	if !ok {
		return nil, errors.Wrapf(ruleerrors.ErrUnknownTransactionType, "transaction type %s", transactionType)
	}
	return handler, nil
}
