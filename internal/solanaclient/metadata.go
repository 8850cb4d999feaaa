package solanaclient

import (
	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// TokenMetadataProgramID is the Metaplex token-metadata program.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

const createMetadataAccountV3Discriminator = 33

type creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

type collection struct {
	Verified bool
	Key      solana.PublicKey
}

type uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type dataV2 struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]creator
	Collection           *collection
	Uses                 *uses
}

type createMetadataAccountArgsV3 struct {
	Data              dataV2
	IsMutable         bool
	CollectionDetails *struct{}
}

// metadataAddress derives the metadata PDA for a mint.
func metadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		TokenMetadataProgramID,
	)
	return addr, err
}

// newCreateMetadataInstruction builds the CreateMetadataAccountV3
// instruction that attaches name, symbol, uri and royalty to a mint.
func newCreateMetadataInstruction(
	mint solana.PublicKey,
	mintAuthority solana.PublicKey,
	payer solana.PublicKey,
	name, symbol, uri string,
	sellerFeeBasisPoints uint16,
) (solana.Instruction, error) {
	metadata, err := metadataAddress(mint)
	if err != nil {
		return nil, err
	}

	args := createMetadataAccountArgsV3{
		Data: dataV2{
			Name:                 name,
			Symbol:               symbol,
			Uri:                  uri,
			SellerFeeBasisPoints: sellerFeeBasisPoints,
		},
		IsMutable: true,
	}

	encoded, err := borsh.Serialize(args)
	if err != nil {
		return nil, err
	}
	data := append([]byte{createMetadataAccountV3Discriminator}, encoded...)

	accounts := []*solana.AccountMeta{
		solana.NewAccountMeta(metadata, true, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(mintAuthority, false, true),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(payer, false, true), // update authority
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	return solana.NewInstruction(TokenMetadataProgramID, accounts, data), nil
}
