package transactiontypes

import (
	"bytes"

	"github.com/RiseVision/rise-node/domain/consensus/database/serialization"
	"github.com/RiseVision/rise-node/domain/consensus/model"
	"github.com/RiseVision/rise-node/domain/consensus/model/externalapi"
	"github.com/RiseVision/rise-node/domain/consensus/ruleerrors"
	"github.com/RiseVision/rise-node/domain/consensus/utils/hashing"
	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/pkg/errors"
)

const keysgroupPrefix = '+'

// multisignature registers a keysgroup whose members must co-sign every
// later transaction of the sender
type multisignature struct {
	baseType
}

// NewMultisignature returns the handler of keysgroup registrations
func NewMultisignature(params *dposconfig.Params, accountManager model.AccountManager) model.TransactionType {
	return &multisignature{baseType{params: params, accountManager: accountManager}}
}

func (m *multisignature) Type() externalapi.TransactionType {
	return externalapi.TransactionTypeMultisignature
}

// CalculateFee charges the base fee once per keysgroup member and once
// for the sender
func (m *multisignature) CalculateFee(transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainAccount, _ uint64) uint64 {

	members := 0
	if transaction.Asset.Multisignature != nil {
		members = len(transaction.Asset.Multisignature.Keysgroup)
	}
	return m.params.Fees.Multisignature * uint64(members+1)
}

func (m *multisignature) ObjectNormalize(transaction *externalapi.DomainTransaction) error {
	err := checkAssetKinds(transaction, false, false, false, true)
	if err != nil {
		return err
	}

	asset := transaction.Asset.Multisignature
	constraints := m.params.Multisignature
	if asset.Min < constraints.MinSignatures || asset.Min > constraints.MaxSignatures {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s requires %d signatures, "+
			"expected %d to %d", transaction.ID, asset.Min, constraints.MinSignatures, constraints.MaxSignatures)
	}
	if asset.Lifetime < constraints.MinLifetime || asset.Lifetime > constraints.MaxLifetime {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has a lifetime of %d hours, "+
			"expected %d to %d", transaction.ID, asset.Lifetime, constraints.MinLifetime, constraints.MaxLifetime)
	}
	if len(asset.Keysgroup) < constraints.MinKeysgroup || len(asset.Keysgroup) > constraints.MaxKeysgroup {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has %d keysgroup members, "+
			"expected %d to %d", transaction.ID, len(asset.Keysgroup), constraints.MinKeysgroup,
			constraints.MaxKeysgroup)
	}
	if int(asset.Min) > len(asset.Keysgroup) {
		return errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s requires %d signatures "+
			"from %d keysgroup members", transaction.ID, asset.Min, len(asset.Keysgroup))
	}

	_, err = parseKeysgroup(asset.Keysgroup)
	return err
}

// parseKeysgroup decodes the '+' prefixed keysgroup entries
func parseKeysgroup(keysgroup []string) ([][]byte, error) {
	publicKeys := make([][]byte, 0, len(keysgroup))
	seen := make(map[string]struct{}, len(keysgroup))
	for _, entry := range keysgroup {
		if len(entry) == 0 || entry[0] != keysgroupPrefix {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "keysgroup entry %q is not '+' prefixed", entry)
		}
		if _, ok := seen[entry]; ok {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "keysgroup entry %s appears twice", entry)
		}
		seen[entry] = struct{}{}

		publicKey, err := keys.ParsePublicKey(entry[1:])
		if err != nil {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "keysgroup entry %s: %s", entry, err)
		}
		publicKeys = append(publicKeys, publicKey)
	}
	return publicKeys, nil
}

func stripKeysgroup(keysgroup []string) []string {
	stripped := make([]string, len(keysgroup))
	for i, entry := range keysgroup {
		stripped[i] = entry[1:]
	}
	return stripped
}

func (m *multisignature) Verify(_ *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	err := requireNoRecipient(transaction)
	if err != nil {
		return err
	}
	err = requireZeroAmount(transaction)
	if err != nil {
		return err
	}
	if sender.IsMultisignature() {
		return errors.Wrapf(ruleerrors.ErrAlreadyMultisignature, "account %s already has a keysgroup",
			sender.Address)
	}

	members, err := parseKeysgroup(transaction.Asset.Multisignature.Keysgroup)
	if err != nil {
		return err
	}
	for _, member := range members {
		if bytes.Equal(member, sender.PublicKey) {
			return errors.Wrapf(ruleerrors.ErrInvalidAsset, "account %s cannot be a member of its own keysgroup",
				sender.Address)
		}
	}
	return m.verifyCoSignatures(transaction, members)
}

// verifyCoSignatures checks that every collected co-signature belongs to
// a distinct keysgroup member. Whether enough were collected is left to
// Ready.
func (m *multisignature) verifyCoSignatures(transaction *externalapi.DomainTransaction, members [][]byte) error {
	if len(transaction.Signatures) == 0 {
		return nil
	}
	if len(transaction.Signatures) > len(members) {
		return errors.Wrapf(ruleerrors.ErrInvalidMultisignatures, "transaction %s carries %d co-signatures "+
			"for %d keysgroup members", transaction.ID, len(transaction.Signatures), len(members))
	}

	assetBytes, err := m.GetBytes(transaction)
	if err != nil {
		return err
	}
	hash, err := hashing.TransactionSigningHash(transaction, assetBytes)
	if err != nil {
		return err
	}

	signed := make([]bool, len(members))
	for _, signature := range transaction.Signatures {
		found := false
		for i, member := range members {
			if !signed[i] && keys.Verify(hash, signature, member) {
				signed[i] = true
				found = true
				break
			}
		}
		if !found {
			return errors.Wrapf(ruleerrors.ErrInvalidMultisignatures, "transaction %s carries a co-signature "+
				"of no remaining keysgroup member", transaction.ID)
		}
	}
	return nil
}

// Ready reports whether every keysgroup member co-signed the registration
func (m *multisignature) Ready(transaction *externalapi.DomainTransaction, _ *externalapi.DomainAccount) bool {
	if transaction.Asset.Multisignature == nil {
		return false
	}
	return len(transaction.Signatures) >= len(transaction.Asset.Multisignature.Keysgroup)
}

func (m *multisignature) Apply(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	account, err := m.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	asset := transaction.Asset.Multisignature
	account.Multisignatures = stripKeysgroup(asset.Keysgroup)
	account.MultiMin = asset.Min
	account.MultiLifetime = asset.Lifetime
	m.accountManager.Save(stagingArea, account)
	return nil
}

func (m *multisignature) Undo(stagingArea *model.StagingArea, _ *externalapi.DomainTransaction,
	_ *externalapi.DomainBlock, sender *externalapi.DomainAccount) error {

	account, err := m.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.Multisignatures = nil
	account.MultiMin = 0
	account.MultiLifetime = 0
	m.accountManager.Save(stagingArea, account)
	return nil
}

func (m *multisignature) ApplyUnconfirmed(stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	account, err := m.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	if account.IsMultisignature() || len(account.UnconfirmedMultisignatures) > 0 {
		return errors.Wrapf(ruleerrors.ErrAlreadyMultisignature, "account %s is already registering a keysgroup",
			account.Address)
	}
	asset := transaction.Asset.Multisignature
	account.UnconfirmedMultisignatures = stripKeysgroup(asset.Keysgroup)
	account.UnconfirmedMultiMin = asset.Min
	account.UnconfirmedMultiLifetime = asset.Lifetime
	m.accountManager.Save(stagingArea, account)
	return nil
}

func (m *multisignature) UndoUnconfirmed(stagingArea *model.StagingArea, _ *externalapi.DomainTransaction,
	sender *externalapi.DomainAccount) error {

	account, err := m.sender(stagingArea, sender)
	if err != nil {
		return err
	}
	account.UnconfirmedMultisignatures = nil
	account.UnconfirmedMultiMin = 0
	account.UnconfirmedMultiLifetime = 0
	m.accountManager.Save(stagingArea, account)
	return nil
}

// GetBytes lays out the asset as its min and lifetime bytes followed by
// the keysgroup entries
func (m *multisignature) GetBytes(transaction *externalapi.DomainTransaction) ([]byte, error) {
	asset := transaction.Asset.Multisignature
	if asset == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has no multisignature asset",
			transaction.ID)
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(asset.Min))
	buf.WriteByte(byte(asset.Lifetime))
	for _, entry := range asset.Keysgroup {
		buf.WriteString(entry)
	}
	return buf.Bytes(), nil
}

func (m *multisignature) DBSave(transaction *externalapi.DomainTransaction) ([]byte, error) {
	if transaction.Asset.Multisignature == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidAsset, "transaction %s has no multisignature asset",
			transaction.ID)
	}
	return serialization.SerializeMultisignatureAsset(transaction.Asset.Multisignature), nil
}

func (m *multisignature) DBRead(assetBytes []byte, transaction *externalapi.DomainTransaction) error {
	asset, err := serialization.DeserializeMultisignatureAsset(assetBytes)
	if err != nil {
		return err
	}
	transaction.Asset.Multisignature = asset
	return nil
}
