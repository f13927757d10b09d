package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

const (
	vkFile = "shot.vk"
	pkFile = "shot.pk"
)

var ErrRootMismatch = errors.New("proof root does not match the commitment")

// ShotPublic is what a verifier learns from one answer.
type ShotPublic struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"` // row*10 + col
	Hit   uint8    `json:"hit"`
}

// Witness is the defender's private side of one answer.
type Witness struct {
	Bit   uint8
	Index int
	Path  []*big.Int
	Salt  *big.Int
	Root  *big.Int // salted root
}

// Keys holds a compiled circuit and its groth16 key pair.
type Keys struct {
	CS constraint.ConstraintSystem
	PK groth16.ProvingKey
	VK groth16.VerifyingKey
}

func compile() (constraint.ConstraintSystem, error) {
	var circuit ShotCircuit
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
}

// Setup compiles the circuit and runs a fresh groth16 setup in memory.
func Setup() (*Keys, error) {
	cs, err := compile()
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, err
	}
	return &Keys{CS: cs, PK: pk, VK: vk}, nil
}

// EnsureShotKeys makes sure dir holds a parsable key pair, generating one
// if not.
func EnsureShotKeys(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, _, err := readKeys(dir); err == nil {
		return nil
	}
	k, err := Setup()
	if err != nil {
		return err
	}
	if err := writeTo(filepath.Join(dir, vkFile), k.VK); err != nil {
		return err
	}
	return writeTo(filepath.Join(dir, pkFile), k.PK)
}

// LoadKeys reads the key pair from dir and compiles the circuit to go with it.
func LoadKeys(dir string) (*Keys, error) {
	vk, pk, err := readKeys(dir)
	if err != nil {
		return nil, err
	}
	cs, err := compile()
	if err != nil {
		return nil, err
	}
	return &Keys{CS: cs, PK: pk, VK: vk}, nil
}

// Prove one shot.
func (k *Keys) Prove(w Witness) ([]byte, ShotPublic, error) {
	if len(w.Path) != MerkleDepth {
		return nil, ShotPublic{}, fmt.Errorf("bad path length %d", len(w.Path))
	}
	var assign ShotCircuit
	assign.Bit = w.Bit
	for i := range MerkleDepth {
		assign.Path[i] = w.Path[i]
	}
	assign.Salt = w.Salt
	assign.Root = w.Root
	assign.Index = w.Index
	assign.Hit = w.Bit

	full, err := frontend.NewWitness(&assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, ShotPublic{}, err
	}
	proof, err := groth16.Prove(k.CS, k.PK, full)
	if err != nil {
		return nil, ShotPublic{}, err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, ShotPublic{}, err
	}
	return buf.Bytes(), ShotPublic{Root: new(big.Int).Set(w.Root), Index: w.Index, Hit: w.Bit}, nil
}

// ProveShot loads the keys from keysDir and proves one shot.
func ProveShot(keysDir string, w Witness) ([]byte, ShotPublic, error) {
	k, err := LoadKeys(keysDir)
	if err != nil {
		return nil, ShotPublic{}, err
	}
	return k.Prove(w)
}

// Verify checks a proof against the root the defender committed to. A nil
// error means the answer is genuine.
func Verify(vk groth16.VerifyingKey, proofBin []byte, pub ShotPublic, root *big.Int) error {
	if pub.Root == nil {
		return errors.New("proof payload missing public root")
	}
	if pub.Root.Cmp(root) != 0 {
		return ErrRootMismatch
	}
	if pub.Hit > 1 {
		return fmt.Errorf("invalid hit output %d", pub.Hit)
	}

	var pubAssign ShotCircuit
	pubAssign.Root = root
	pubAssign.Index = pub.Index
	pubAssign.Hit = pub.Hit
	pubWit, err := frontend.NewWitness(&pubAssign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}

	pr := groth16.NewProof(ecc.BN254)
	if _, err := pr.ReadFrom(bytes.NewReader(proofBin)); err != nil {
		return fmt.Errorf("read proof: %w", err)
	}
	return groth16.Verify(pr, vk, pubWit)
}

func (k *Keys) Verify(proofBin []byte, pub ShotPublic, root *big.Int) error {
	return Verify(k.VK, proofBin, pub, root)
}

// VerifyShot verifies with the key stored at vkPath.
func VerifyShot(vkPath string, proofBin []byte, pub ShotPublic, root *big.Int) error {
	vk, err := readVK(vkPath)
	if err != nil {
		return err
	}
	return Verify(vk, proofBin, pub, root)
}

// --- key IO helpers using io.WriterTo / io.ReaderFrom ---

func writeTo(path string, v io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := v.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readVK(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BN254)
	_, err = vk.ReadFrom(f)
	return vk, err
}

func readPK(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(f)
	return pk, err
}

func readKeys(dir string) (groth16.VerifyingKey, groth16.ProvingKey, error) {
	vk, err := readVK(filepath.Join(dir, vkFile))
	if err != nil {
		return nil, nil, err
	}
	pk, err := readPK(filepath.Join(dir, pkFile))
	if err != nil {
		return nil, nil, err
	}
	return vk, pk, nil
}

// VKPath is where EnsureShotKeys puts the verifying key.
func VKPath(dir string) string { return filepath.Join(dir, vkFile) }
