package blockvalidator

import (
	"time"

	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/utils/slots"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/RiseVision/rise-node/infrastructure/logger"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether a block is valid
type blockValidator struct {
	params *dposconfig.Params
	slots  *slots.Slots
	now    func() time.Time

	databaseContext  model.DBReader
	transactionLogic model.TransactionLogic
	accountManager   model.AccountManager
	delegateManager  model.DelegateManager
	rewardSchedule   model.RewardSchedule
}

// New instantiates a new BlockValidator
func New(
	params *dposconfig.Params,
	slots *slots.Slots,
	databaseContext model.DBReader,
	transactionLogic model.TransactionLogic,
	accountManager model.AccountManager,
	delegateManager model.DelegateManager,
	rewardSchedule model.RewardSchedule) model.BlockValidator {

	return &blockValidator{
		params:           params,
		slots:            slots,
		now:              time.Now,
		databaseContext:  databaseContext,
		transactionLogic: transactionLogic,
		accountManager:   accountManager,
		delegateManager:  delegateManager,
		rewardSchedule:   rewardSchedule,
	}
}

// VerifyBlock checks block as the successor of lastBlock
func (v *blockValidator) VerifyBlock(stagingArea *model.StagingArea, block, lastBlock *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "VerifyBlock")
	defer onEnd()

	err := v.validateHeaderInIsolation(block)
	if err != nil {
		return err
	}
	err = v.validateBodyInIsolation(block)
	if err != nil {
		return err
	}
	err = v.validateHeaderInContext(stagingArea, block, lastBlock)
	if err != nil {
		return err
	}
	return v.validateBodyInContext(stagingArea, block)
}
