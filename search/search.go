// Package search runs many independent engine instances concurrently, one
// per candidate register-8 value, to find the value the teleporter puzzle
// accepts — without needing to understand the puzzle's own arithmetic.
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"vm15/engine"
	"vm15/memory"
	"vm15/screen"
)

// Candidate is one register-8 value to try.
type Candidate = uint16

// Transcript replays a walkthrough up to and including the command that
// triggers the teleporter, one line per entry (no trailing newline; Find
// appends it).
type Transcript []string

// SuccessCheck reports whether the output collected after bypassing the
// teleporter's integrity check indicates this candidate was the correct
// one. It is necessarily game-specific (the winning text lives in the
// program image, not in this package), so callers supply it.
type SuccessCheck func(output string) bool

// Result is one candidate's outcome.
type Result struct {
	Register8 Candidate
	Success   bool
}

// AllCandidates returns every register-8 value in [1, 65535], the full
// range the production search covers.
func AllCandidates() []Candidate {
	candidates := make([]Candidate, 65535)
	for i := range candidates {
		candidates[i] = Candidate(i + 1)
	}
	return candidates
}

// Find runs one engine per candidate, feeding each the same Transcript,
// bypassing the teleporter's integrity check, and reporting the first
// candidate whose post-bypass output satisfies isSuccess. It cancels the
// remaining candidates as soon as one succeeds.
//
// Concurrency is bounded to runtime.NumCPU() simultaneous engines via a
// weighted semaphore; errgroup propagates the first fatal (non-puzzle)
// error and cancels the rest.
func Find(ctx context.Context, image []byte, transcript Transcript, candidates []Candidate, isSuccess SuccessCheck) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	g, ctx := errgroup.WithContext(ctx)

	found := make(chan Result, 1)

	for _, candidate := range candidates {
		candidate := candidate
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			select {
			case <-ctx.Done():
				return nil
			default:
			}

			result, err := tryCandidate(image, transcript, candidate, isSuccess)
			if err != nil {
				return fmt.Errorf("search: candidate %d: %w", candidate, err)
			}
			if result.Success {
				select {
				case found <- result:
					cancel()
				default:
				}
			}
			return nil
		})
	}

	err := g.Wait()
	select {
	case result := <-found:
		return result, nil
	default:
	}
	if err != nil {
		return Result{}, err
	}
	return Result{}, fmt.Errorf("search: no candidate satisfied isSuccess")
}

// tryCandidate runs a single fresh engine for candidate, replaying
// transcript, bypassing the teleporter check, and collecting the output
// produced afterward.
func tryCandidate(image []byte, transcript Transcript, candidate Candidate, isSuccess SuccessCheck) (Result, error) {
	mem, err := memory.LoadImage(image)
	if err != nil {
		return Result{}, err
	}

	host, vmSide := screen.New()
	e := engine.New(mem, vmSide)
	e.BypassTeleporterCheck = true
	e.Register8Preset = &candidate

	for _, line := range transcript {
		if err := host.Send(line + "\n"); err != nil {
			return Result{}, err
		}
	}

	reached, err := e.CheckTeleporter()
	if err != nil {
		return Result{Register8: candidate}, err
	}
	host.GetAll() // discard output accumulated walking the transcript

	if !reached {
		return Result{Register8: candidate}, nil
	}

	// Two steps: the call instruction itself (lands ip at
	// teleporterCheckAddress), then the bypassed "instruction" there,
	// which BypassTeleporterCheck replaces with ret and the expected
	// register values.
	for i := 0; i < 2; i++ {
		if err := e.Step(); err != nil && !errors.Is(err, engine.ErrHalt) {
			return Result{Register8: candidate}, err
		}
	}

	if _, err := e.RunUntilEmpty(); err != nil {
		return Result{Register8: candidate}, err
	}

	output := host.GetAll()
	return Result{Register8: candidate, Success: isSuccess(output)}, nil
}
