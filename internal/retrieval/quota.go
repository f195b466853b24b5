package retrieval

// computeQuotas splits total across n sources.
// Every source gets max(min, total/n); the remainder goes one each to the first
// sources in order; each quota is then capped at max.
func computeQuotas(total, n, minPerDoc, maxPerDoc int) []int {
	if n <= 0 {
		return nil
	}

	base := total / n
	if base < minPerDoc {
		base = minPerDoc
	}
	extra := total - base*n

	quotas := make([]int, n)
	for i := range quotas {
		q := base
		if i < extra {
			q++
		}
		if maxPerDoc > 0 && q > maxPerDoc {
			q = maxPerDoc
		}
		quotas[i] = q
	}
	return quotas
}
