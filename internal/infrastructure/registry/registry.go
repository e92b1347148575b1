package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"codemint.backend/internal/domain/entities"
	domainerrors "codemint.backend/internal/domain/errors"
	"codemint.backend/internal/domain/repositories"
	"codemint.backend/internal/infrastructure/blockchain"
)

// RegistryABI covers the read and write surface of the NFC registry
// contract consumed by this service.
var RegistryABI = mustParseABI(`[
	{"inputs":[],"name":"numProjects","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"projectId","type":"uint256"}],"name":"project","outputs":[{"internalType":"address","name":"author","type":"address"},{"internalType":"string","name":"codeCid","type":"string"},{"internalType":"string","name":"parametersCid","type":"string"},{"internalType":"string","name":"name","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"string","name":"license","type":"string"},{"internalType":"uint256","name":"pricePerTokenInWei","type":"uint256"},{"internalType":"uint256","name":"maxNumEditions","type":"uint256"},{"internalType":"bool","name":"isPaused","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalSupply","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"projectId","type":"uint256"}],"name":"tokenIdsByProjectId","outputs":[{"internalType":"uint256[]","name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"ownerOf","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"projectIdByTokenId","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"uint256","name":"index","type":"uint256"}],"name":"tokenOfOwnerByIndex","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"author","type":"address"},{"internalType":"string","name":"codeCid","type":"string"},{"internalType":"string","name":"parametersCid","type":"string"},{"internalType":"string","name":"name","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"string","name":"license","type":"string"},{"internalType":"uint256","name":"pricePerTokenInWei","type":"uint256"},{"internalType":"uint256","name":"maxNumEditions","type":"uint256"},{"internalType":"string","name":"firstTokenCid","type":"string"}],"name":"createProject","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"payable","type":"function"},
	{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"uint256","name":"projectId","type":"uint256"},{"internalType":"string","name":"tokenCid","type":"string"}],"name":"mint","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"payable","type":"function"}
]`)

var executeRegistryTx = func(
	ctx context.Context,
	client *ethclient.Client,
	chainID *big.Int,
	operatorPrivateKey string,
	contractAddress string,
	parsedABI abi.ABI,
	value *big.Int,
	method string,
	args ...interface{},
) (string, error) {
	privateKeyHex := strings.TrimPrefix(operatorPrivateKey, "0x")
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return "", domainerrors.Submission("invalid operator private key", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return "", domainerrors.Submission("failed to build transactor", err)
	}
	auth.Context = ctx
	auth.Value = value

	contract := bind.NewBoundContract(common.HexToAddress(contractAddress), parsedABI, client, client, client)
	tx, err := contract.Transact(auth, method, args...)
	if err != nil {
		return "", domainerrors.Submission("transaction submission rejected", err)
	}
	return tx.Hash().Hex(), nil
}

// Client is the typed facade over the registry contract
type Client struct {
	evm                *blockchain.EVMClient
	contractAddress    string
	operatorPrivateKey string
	confirmTimeout     time.Duration
}

var _ repositories.ProjectRegistry = (*Client)(nil)

// NewClient creates a registry client bound to one contract address.
func NewClient(evm *blockchain.EVMClient, contractAddress, operatorPrivateKey string, confirmTimeout time.Duration) *Client {
	return &Client{
		evm:                evm,
		contractAddress:    contractAddress,
		operatorPrivateKey: strings.TrimSpace(operatorPrivateKey),
		confirmTimeout:     confirmTimeout,
	}
}

// ProjectCount returns the number of published projects.
func (c *Client) ProjectCount(ctx context.Context) (uint64, error) {
	count, err := callTypedView[*big.Int](ctx, c, "numProjects")
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// Project fetches a single project record. Ids at or past the current count
// reject with ErrNotFound.
func (c *Client) Project(ctx context.Context, id uint64) (*entities.Project, error) {
	count, err := c.ProjectCount(ctx)
	if err != nil {
		return nil, err
	}
	if id >= count {
		return nil, domainerrors.NotFound(fmt.Sprintf("project %d not found", id))
	}

	data, err := RegistryABI.Pack("project", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	out, err := c.evm.CallView(ctx, c.contractAddress, data)
	if err != nil {
		return nil, err
	}
	vals, err := RegistryABI.Unpack("project", out)
	if err != nil || len(vals) != 9 {
		return nil, fmt.Errorf("failed to decode project %d", id)
	}

	author, ok := vals[0].(common.Address)
	if !ok {
		return nil, errors.New("invalid project author field")
	}
	project := &entities.Project{
		ID:     id,
		Author: author.Hex(),
	}
	fields := []*string{&project.CodeCID, &project.ParametersCID, &project.Name, &project.Description, &project.License}
	for i, dst := range fields {
		s, ok := vals[i+1].(string)
		if !ok {
			return nil, fmt.Errorf("invalid project string field %d", i+1)
		}
		*dst = s
	}
	if project.PricePerToken, ok = vals[6].(*big.Int); !ok {
		return nil, errors.New("invalid project price field")
	}
	if project.MaxEditions, ok = vals[7].(*big.Int); !ok {
		return nil, errors.New("invalid project max editions field")
	}
	if project.Paused, ok = vals[8].(bool); !ok {
		return nil, errors.New("invalid project paused field")
	}
	return project, nil
}

// TokenCount returns the global number of minted tokens.
func (c *Client) TokenCount(ctx context.Context) (uint64, error) {
	count, err := callTypedView[*big.Int](ctx, c, "totalSupply")
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// TokenIDsByProject returns the project's token ids in mint order.
func (c *Client) TokenIDsByProject(ctx context.Context, projectID uint64) ([]uint64, error) {
	raw, err := callTypedView[[]*big.Int](ctx, c, "tokenIdsByProjectId", new(big.Int).SetUint64(projectID))
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, len(raw))
	for i, v := range raw {
		ids[i] = v.Uint64()
	}
	return ids, nil
}

// OwnerOf returns the current owner address of a token.
func (c *Client) OwnerOf(ctx context.Context, tokenID uint64) (string, error) {
	owner, err := callTypedView[common.Address](ctx, c, "ownerOf", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	return owner.Hex(), nil
}

// TokenMetadataCID resolves a token's metadata CID from its stored URI.
func (c *Client) TokenMetadataCID(ctx context.Context, tokenID uint64) (string, error) {
	uri, err := callTypedView[string](ctx, c, "tokenURI", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return "", err
	}
	return ParseCID(uri), nil
}

// ProjectIDOfToken returns the parent project id of a token.
func (c *Client) ProjectIDOfToken(ctx context.Context, tokenID uint64) (uint64, error) {
	id, err := callTypedView[*big.Int](ctx, c, "projectIdByTokenId", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// BalanceOf returns the number of tokens held by owner.
func (c *Client) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	count, err := callTypedView[*big.Int](ctx, c, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// TokenOfOwnerByIndex enumerates an owner's holdings by index.
func (c *Client) TokenOfOwnerByIndex(ctx context.Context, owner string, index uint64) (uint64, error) {
	id, err := callTypedView[*big.Int](ctx, c, "tokenOfOwnerByIndex", common.HexToAddress(owner), new(big.Int).SetUint64(index))
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// CreateProject submits the create-project write. The payable value must
// equal the price per token; this mirrors the contract-side check so bad
// calls fail before any submission.
func (c *Client) CreateProject(ctx context.Context, call *repositories.CreateProjectCall) (string, error) {
	if call.Price == nil || call.MaxEditions == nil {
		return "", domainerrors.Validation("price and max editions are required")
	}
	if call.ValueSent == nil || call.ValueSent.Cmp(call.Price) != 0 {
		return "", domainerrors.Validation("value sent must equal price per token")
	}
	if !common.IsHexAddress(call.Author) {
		return "", domainerrors.Validation("invalid author address")
	}
	if call.CodeCID == "" || call.ParametersCID == "" || call.FirstTokenMetadataCID == "" {
		return "", domainerrors.Validation("code, parameters and first token CIDs are required")
	}

	return c.transact(ctx, call.ValueSent, "createProject",
		common.HexToAddress(call.Author),
		call.CodeCID,
		call.ParametersCID,
		call.Name,
		call.Description,
		call.License,
		call.Price,
		call.MaxEditions,
		call.FirstTokenMetadataCID,
	)
}

// Mint submits the mint write.
func (c *Client) Mint(ctx context.Context, call *repositories.MintCall) (string, error) {
	if !common.IsHexAddress(call.Recipient) {
		return "", domainerrors.Validation("invalid recipient address")
	}
	if call.MetadataCID == "" {
		return "", domainerrors.Validation("token metadata CID is required")
	}
	if call.ValueSent == nil {
		return "", domainerrors.Validation("value sent is required")
	}

	return c.transact(ctx, call.ValueSent, "mint",
		common.HexToAddress(call.Recipient),
		new(big.Int).SetUint64(call.ProjectID),
		call.MetadataCID,
	)
}

// WaitConfirmed blocks until the transaction is mined or the configured
// confirmation timeout elapses. A mined-but-reverted transaction is a
// submission failure, distinct from a timeout.
func (c *Client) WaitConfirmed(ctx context.Context, txHash string) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	receipt, err := c.evm.WaitConfirmed(waitCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domainerrors.ConfirmationTimeout("transaction " + txHash + " not confirmed in time")
		}
		return domainerrors.Submission("confirmation wait failed", err)
	}
	if receipt.Status == 0 {
		return domainerrors.Submission("transaction "+txHash+" reverted", nil)
	}
	return nil
}

func (c *Client) transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (string, error) {
	if c.operatorPrivateKey == "" {
		return "", domainerrors.Submission("operator private key is not configured", nil)
	}
	return executeRegistryTx(ctx, c.evm.Raw(), c.evm.ChainID(), c.operatorPrivateKey, c.contractAddress, RegistryABI, value, method, args...)
}

// ParseCID extracts the CID from a token URI. The registry stores URIs in
// ipfs:// or gateway form; a bare CID passes through unchanged.
func ParseCID(uri string) string {
	if idx := strings.Index(uri, "://"); idx >= 0 {
		uri = uri[idx+3:]
	}
	uri = strings.TrimPrefix(uri, "ipfs/")
	if idx := strings.IndexByte(uri, '/'); idx >= 0 {
		uri = uri[:idx]
	}
	return uri
}

func callTypedView[T any](ctx context.Context, c *Client, method string, args ...interface{}) (T, error) {
	var zero T

	data, err := RegistryABI.Pack(method, args...)
	if err != nil {
		return zero, err
	}
	out, err := c.evm.CallView(ctx, c.contractAddress, data)
	if err != nil {
		return zero, err
	}
	vals, err := RegistryABI.Unpack(method, out)
	if err != nil || len(vals) == 0 {
		return zero, fmt.Errorf("failed to decode %s", method)
	}
	value, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("invalid %s return type", method)
	}
	return value, nil
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
