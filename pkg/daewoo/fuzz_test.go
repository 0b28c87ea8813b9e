// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package daewoo

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomRecord fills every payload byte with random data
func randomRecord(rng *rand.Rand) Record {
	var payload [RecordLength]byte
	rng.Read(payload[:])
	r, _ := UnmarshalRecord(payload[:])
	return r
}

// ============================================================
// Codec Fuzz Tests
// ============================================================

func TestFuzz_DecodeRandomBytes(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		data := make([]byte, rng.Intn(40))
		rng.Read(data)
		if rng.Intn(2) == 0 && len(data) > 0 {
			data[0] = SyncByte
		}

		_, err := Decode(data)
		if len(data) != FrameLength && err == nil {
			t.Fatalf("round %d: %d-byte input decoded without error", i, len(data))
		}
	}
}

func TestFuzz_EncodeInvariants(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		r := randomRecord(rng)
		f := Encode(r)

		if len(f.Bytes()) != FrameLength {
			t.Fatalf("round %d: frame length %d", i, len(f.Bytes()))
		}
		sum := Checksum(f[:FrameOffsetChecksum])
		if f.Checksum() != sum || f[FrameOffsetPayload+OffsetChecksum] != sum {
			t.Fatalf("round %d: checksum mismatch in % X", i, f)
		}
		if f[FrameOffsetPayload] != OpWrite {
			t.Fatalf("round %d: operation byte 0x%02X", i, f[FrameOffsetPayload])
		}
	}
}

func TestFuzz_DecodeEncodeChecksum(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		r := randomRecord(rng)
		r.Operation = OpWrite
		frame := buildStatusFrame(r)

		decoded, err := Decode(frame)
		if err != nil {
			t.Fatalf("round %d: valid frame rejected: %v", i, err)
		}
		if Encode(decoded).Checksum() != frame[FrameOffsetChecksum] {
			t.Fatalf("round %d: re-encoded checksum differs", i)
		}
	}
}

func TestFuzz_DecoderStream(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()
	d := NewDecoder()

	sent := 0
	received := 0
	for i := 0; i < rounds; i++ {
		// noise that never contains a sync byte, then one valid frame
		noise := make([]byte, rng.Intn(8))
		for j := range noise {
			noise[j] = byte(rng.Intn(SyncByte))
		}
		data := append(noise, buildStatusFrame(randomRecord(rng))...)
		sent++

		packets, errs := feed(d, data)
		if len(errs) != 0 {
			t.Fatalf("round %d: unexpected errors %v", i, errs)
		}
		received += len(packets)
	}

	if received != sent {
		t.Errorf("sent %d frames, received %d", sent, received)
	}
}
