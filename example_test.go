package scrypthash_test

import (
	"fmt"
	"log"
	"time"

	scrypthash "github.com/hasbyte1/go-scrypt-hash"
)

// Example demonstrates the package-level quick-start surface. Parameters are
// calibrated to the current machine against the default budgets (10% of
// physical memory, one second of CPU time).
func Example() {
	encoded, err := scrypthash.Hash("my-secret-password")
	if err != nil {
		log.Fatal(err)
	}

	ok, err := scrypthash.Check("my-secret-password", encoded)
	if err != nil {
		log.Fatal(err)
	}
	_ = ok // true
}

// Example_pinnedParams pins the cost parameters instead of calibrating,
// which makes hashing deterministic in cost and fast enough for tests.
func Example_pinnedParams() {
	params := scrypthash.Params{LogN: 4, R: 8, P: 1} // test-grade, far too weak for production
	h, err := scrypthash.NewHasher(scrypthash.Options{Params: &params})
	if err != nil {
		log.Fatal(err)
	}

	encoded, _ := h.Make("hunter2")
	ok, _ := h.Check("hunter2", encoded)
	fmt.Println(ok)
	// Output: true
}

// Example_customBudgets shows a hasher tuned to tighter budgets than the
// defaults. Every record is self-describing, so records produced under one
// budget verify under any other.
func Example_customBudgets() {
	h, err := scrypthash.NewHasher(scrypthash.Options{
		MemFraction: 0.25,
		MaxTime:     250 * time.Millisecond,
	})
	if err != nil {
		log.Fatal(err)
	}
	_ = h
}

// ExampleHasher_NeedsRehash shows the login-time migration pattern: verify,
// then re-hash when the stored record is weaker than the configured floor.
func ExampleHasher_NeedsRehash() {
	params := scrypthash.Params{LogN: 4, R: 8, P: 1}
	h, err := scrypthash.NewHasher(scrypthash.Options{
		Params:    &params,
		MinParams: scrypthash.Params{LogN: 14, R: 8, P: 1},
	})
	if err != nil {
		log.Fatal(err)
	}

	stored, _ := h.Make("password")

	ok, _ := h.Check("password", stored)
	if ok {
		if needs, _ := h.NeedsRehash(stored); needs {
			// Re-hash and persist the new record.
			fmt.Println("rehash needed")
		}
	}
	// Output: rehash needed
}

// ExampleHasher_Info inspects a record's parameters without verifying any
// password, e.g. for auditing a credential store.
func ExampleHasher_Info() {
	params := scrypthash.Params{LogN: 6, R: 8, P: 2}
	h, err := scrypthash.NewHasher(scrypthash.Options{Params: &params})
	if err != nil {
		log.Fatal(err)
	}

	encoded, _ := h.Make("audited")
	info, _ := h.Info(encoded)
	fmt.Printf("N=%d r=%d p=%d\n", info.Params.N(), info.Params.R, info.Params.P)
	// Output: N=64 r=8 p=2
}
