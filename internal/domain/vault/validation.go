package vault

// ValidateConfig checks the score threshold and rate bounds.
func ValidateConfig(cfg ConfigParams) error {
	if cfg.MinScore > MaxScore {
		return ErrInvalidConfig
	}
	if cfg.PayoutRateBps > MaxRateBps {
		return ErrInvalidConfig
	}
	if cfg.PenaltyRateBps > MaxRateBps {
		return ErrInvalidConfig
	}
	return nil
}

// ValidateScore checks a reported score against the 0-100 range.
func ValidateScore(score uint64) error {
	if score > MaxScore {
		return ErrInvalidConfig
	}
	return nil
}
