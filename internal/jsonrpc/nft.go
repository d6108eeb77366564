package jsonrpc

import (
	"context"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/eth"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/nft"
)

func (s *Service) GetNftMetadatas(ctx context.Context, c coin.Type, ids []nft.Identifier) ([]nft.Metadata, error) {
	return s.simpleHash.GetNftMetadatas(ctx, c, ids)
}

func (s *Service) GetNftBalances(ctx context.Context, wallet string, ids []nft.Identifier, c coin.Type) ([]uint64, error) {
	return s.simpleHash.GetNftBalances(ctx, wallet, ids, c)
}

// GetERC721Metadata reads tokenURI and returns the metadata JSON it names.
func (s *Service) GetERC721Metadata(ctx context.Context, contract, tokenID, chainID string) (string, error) {
	return s.tokenMetadata(ctx, contract, tokenID, chainID, eth.ERC721MetadataInterfaceID)
}

// GetERC1155Metadata reads uri, substitutes {id} and returns the metadata JSON.
func (s *Service) GetERC1155Metadata(ctx context.Context, contract, tokenID, chainID string) (string, error) {
	return s.tokenMetadata(ctx, contract, tokenID, chainID, eth.ERC1155MetadataInterfaceID)
}

func (s *Service) tokenMetadata(ctx context.Context, contract, tokenID, chainID, interfaceID string) (string, error) {
	uri, err := s.eth.GetEthTokenURI(ctx, chainID, contract, tokenID, interfaceID)
	if err != nil {
		return "", err
	}
	return s.metadata.Fetch(ctx, uri)
}
