package ruleerrors

import (
	"errors"
	"strings"
	"testing"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

func TestNewErrMissingBlock(t *testing.T) {
	missingID := externalapi.BlockID{255, 255, 255}
	outer := NewErrMissingBlock(missingID)
	expectedOuterErr := "ErrMissingBlock: missing the following blocks: [ffffff0000000000000000000000000000000000000000000000000000000000]"

	inner := &ErrMissingBlocks{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrMissingBlock: Outer should contain ErrMissingBlocks in it")
	}
	if len(inner.MissingBlockIDs) != 1 {
		t.Fatalf("TestNewErrMissingBlock: Expected len(inner.MissingBlockIDs) 1, found: %d", len(inner.MissingBlockIDs))
	}
	if inner.MissingBlockIDs[0] != missingID {
		t.Fatalf("TestNewErrMissingBlock: Expected %s. found: %s", missingID, inner.MissingBlockIDs[0])
	}

	fatal := &FatalError{}
	if !errors.As(outer, fatal) {
		t.Fatal("TestNewErrMissingBlock: Outer should contain FatalError in it")
	}
	if fatal.message != "ErrMissingBlock" {
		t.Fatalf("TestNewErrMissingBlock: Expected message = 'ErrMissingBlock', found: '%s'", fatal.message)
	}
	if !IsFatal(outer) {
		t.Fatal("TestNewErrMissingBlock: missing block errors should be fatal")
	}
	if IsRuleError(outer) {
		t.Fatal("TestNewErrMissingBlock: missing block errors should not be rule errors")
	}

	ids, ok := MissingBlocks(outer)
	if !ok || len(ids) != 1 || ids[0] != missingID {
		t.Fatalf("TestNewErrMissingBlock: MissingBlocks returned (%v, %t)", ids, ok)
	}

	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestNewErrMissingBlock: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestWrappedSentinels(t *testing.T) {
	ruleErr := Errorf(ErrMilestoneTooFewSignatures, "got %d signatures, threshold is %d", 1, 2)
	if !errors.Is(ruleErr, ErrMilestoneTooFewSignatures) {
		t.Fatalf("TestWrappedSentinels: %s should match ErrMilestoneTooFewSignatures", ruleErr)
	}
	if errors.Is(ruleErr, ErrMilestoneInvalidSignature) {
		t.Fatalf("TestWrappedSentinels: %s should not match ErrMilestoneInvalidSignature", ruleErr)
	}
	if !IsRuleError(ruleErr) || IsFatal(ruleErr) {
		t.Fatalf("TestWrappedSentinels: %s should be a rule error and not fatal", ruleErr)
	}
	if !strings.HasPrefix(ruleErr.Error(), "ErrMilestoneTooFewSignatures: got 1 signatures") {
		t.Fatalf("TestWrappedSentinels: unexpected message %s", ruleErr)
	}

	fatalErr := Fatalf(ErrInvalidBlocksCount, "referenced %d", 3)
	if !errors.Is(fatalErr, ErrInvalidBlocksCount) {
		t.Fatalf("TestWrappedSentinels: %s should match ErrInvalidBlocksCount", fatalErr)
	}
	if !IsFatal(fatalErr) || IsRuleError(fatalErr) {
		t.Fatalf("TestWrappedSentinels: %s should be fatal and not a rule error", fatalErr)
	}
	if errors.Is(fatalErr, ErrPreviousMilestoneNotFound) {
		t.Fatalf("TestWrappedSentinels: %s should not match ErrPreviousMilestoneNotFound", fatalErr)
	}
}
