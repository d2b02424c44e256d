// Gosoftware harness encrypts and decrypts batches of random messages with
// Go's AEAD implementations and writes one CSV per algorithm and direction
// in the same format as the software benchmark executable.
package main

import (
	"bufio"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

const aadLen = 64

type algorithm struct {
	name   string
	keyLen int
	new    func(key []byte) (cipher.AEAD, error)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

var algorithms = []algorithm{
	{"AES_128_GCM", 16, newGCM},
	{"AES_256_GCM", 32, newGCM},
	{"CHACHA20_POLY1305", chacha20poly1305.KeySize, chacha20poly1305.New},
	{"XCHACHA20_POLY1305", chacha20poly1305.KeySize, chacha20poly1305.NewX},
}

type measurement struct {
	timeUs        []float64
	throughputGBs []float64
}

func main() {
	msgLen := flag.Int("len", 1024, "message size in bytes")
	msgNum := flag.Int("num", 1000, "number of messages per run")
	runs := flag.Int("runs", 10, "number of runs")
	dataPath := flag.String("data_path", "", "output directory prefix, ending with a separator")
	only := flag.String("algorithms", "", "comma separated algorithm names (default: all)")
	flag.Parse()

	if *msgLen <= 0 || *msgNum <= 0 || *runs <= 0 {
		fatal("-len, -num and -runs must be positive")
	}
	if *dataPath == "" {
		fatal("-data_path flag is required")
	}

	selected := selectAlgorithms(*only)
	if len(selected) == 0 {
		fatal("no algorithm matches %q", *only)
	}

	for _, alg := range selected {
		enc, dec, err := benchmark(alg, *msgLen, *msgNum, *runs)
		if err != nil {
			fatal("%s: %v", alg.name, err)
		}

		for dir, m := range map[string]measurement{"encrypt": enc, "decrypt": dec} {
			name := fmt.Sprintf("%s%s_%s_%d_%d.csv", *dataPath, alg.name, dir, *msgNum, *msgLen)
			if err := store(name, m); err != nil {
				fatal("store %s: %v", name, err)
			}
		}
	}
}

func selectAlgorithms(only string) []algorithm {
	if only == "" {
		return algorithms
	}

	var out []algorithm

	for _, want := range strings.Split(only, ",") {
		for _, alg := range algorithms {
			if strings.EqualFold(alg.name, strings.TrimSpace(want)) {
				out = append(out, alg)
			}
		}
	}

	return out
}

// benchmark times encryption and decryption of msgNum fresh messages per
// run. Every run uses a new key and new nonces; only the cipher calls are
// timed.
func benchmark(alg algorithm, msgLen, msgNum, runs int) (measurement, measurement, error) {
	var enc, dec measurement

	bytes := float64(msgLen) * float64(msgNum)

	for range runs {
		key := randomBytes(alg.keyLen)

		aead, err := alg.new(key)
		if err != nil {
			return enc, dec, fmt.Errorf("new cipher: %w", err)
		}

		aad := randomBytes(aadLen)
		plaintexts := make([][]byte, msgNum)
		nonces := make([][]byte, msgNum)
		ciphertexts := make([][]byte, msgNum)

		for i := range msgNum {
			plaintexts[i] = randomBytes(msgLen)
			nonces[i] = randomBytes(aead.NonceSize())
			ciphertexts[i] = make([]byte, 0, msgLen+aead.Overhead())
		}

		start := time.Now()
		for i := range msgNum {
			ciphertexts[i] = aead.Seal(ciphertexts[i], nonces[i], plaintexts[i], aad)
		}
		encUs := microseconds(time.Since(start))

		out := make([]byte, 0, msgLen)

		start = time.Now()
		for i := range msgNum {
			if out, err = aead.Open(out[:0], nonces[i], ciphertexts[i], aad); err != nil {
				return enc, dec, fmt.Errorf("open message %d: %w", i, err)
			}
		}
		decUs := microseconds(time.Since(start))

		enc.add(encUs, bytes)
		dec.add(decUs, bytes)
	}

	return enc, dec, nil
}

// add records a run. Throughput is bytes per microsecond / 1000, i.e. GB/s.
func (m *measurement) add(us, bytes float64) {
	m.timeUs = append(m.timeUs, us)
	m.throughputGBs = append(m.throughputGBs, bytes/us/1000)
}

// microseconds never returns zero so throughput stays finite.
func microseconds(d time.Duration) float64 {
	us := float64(d.Nanoseconds()) / 1e3

	return max(us, 1e-3)
}

func store(name string, m measurement) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "run, time in microseconds, throughput (GB/s)")

	for i := range m.timeUs {
		fmt.Fprintf(w, "%d, %f, %f\n", i, m.timeUs[i], m.throughputGBs[i])
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		fatal("random: %v", err)
	}

	return b
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "gosoftware-harness: "+format+"\n", args...)
	os.Exit(1)
}
