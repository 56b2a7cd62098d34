package results

import "testing"

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, string](3)
	if !ok.IsSuccess() || ok.IsFailure() || *ok.Success != 3 {
		t.Fatalf("unexpected success result: %+v", ok)
	}

	bad := FailureResult[int, string]("boom")
	if bad.IsSuccess() || !bad.IsFailure() || *bad.Failure != "boom" {
		t.Fatalf("unexpected failure result: %+v", bad)
	}

	var zero OperationResult[int, string]
	if zero.IsSuccess() || zero.IsFailure() {
		t.Fatal("zero result should be neither success nor failure")
	}
}
