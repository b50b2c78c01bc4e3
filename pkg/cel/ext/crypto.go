package ext

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/uuid"
)

// CryptoFuncs returns CEL environment options for hashing and identifier
// functions.
//
// Functions:
//   - xxhash(string) -> string: xxHash64 as hex (fast, non-cryptographic, up to 16 chars)
//   - sha256(string) -> string: SHA256 as hex (cryptographic, 64 chars)
//   - uuid() -> string: Random v4 UUID
//
// uuid() is non-deterministic, so expressions using it cannot be replayed
// to identical output.
func CryptoFuncs() cel.EnvOption {
	return cel.Lib(&cryptoLib{})
}

type cryptoLib struct{}

func (l *cryptoLib) LibraryName() string {
	return "fieldry.crypto"
}

func (l *cryptoLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("xxhash",
			cel.Overload("xxhash_string",
				[]*cel.Type{cel.StringType},
				cel.StringType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					sum := xxhash.Sum64String(string(s.(types.String)))
					return types.String(strconv.FormatUint(sum, 16))
				}),
			),
		),
		cel.Function("sha256",
			cel.Overload("sha256_string",
				[]*cel.Type{cel.StringType},
				cel.StringType,
				cel.UnaryBinding(func(s ref.Val) ref.Val {
					h := sha256.Sum256([]byte(string(s.(types.String))))
					return types.String(hex.EncodeToString(h[:]))
				}),
			),
		),
		cel.Function("uuid",
			cel.Overload("uuid",
				nil,
				cel.StringType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					return types.String(uuid.NewString())
				}),
			),
		),
	}
}

func (l *cryptoLib) ProgramOptions() []cel.ProgramOption {
	return nil
}
