package services

// Monetary arithmetic never wraps: every add/sub/mul on lamport amounts goes
// through these helpers and fails the whole call with ErrMathOverflow instead.

func safeAdd(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrMathOverflow
	}
	sum := a + b
	if sum < a {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

func safeSub(a, b int64) (int64, error) {
	if b < 0 || a < b {
		return 0, ErrMathOverflow
	}
	return a - b, nil
}

func safeMul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrMathOverflow
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a {
		return 0, ErrMathOverflow
	}
	return product, nil
}

// feeFromBps computes amount * bps / 10000 with overflow checking.
func feeFromBps(amount, bps int64) (int64, error) {
	product, err := safeMul(amount, bps)
	if err != nil {
		return 0, err
	}
	return product / 10_000, nil
}
