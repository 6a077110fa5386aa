package calibration

// Symmetrize augments a calibration fold with a sign-flipped mirror of
// every sample: score maps to 1-score, the class flips, and the weight
// is halved and shared with the mirror copy. Fitting on the augmented
// set forces f(x) + f(1-x) = 1 approximately, appropriate when the two
// classes are physically symmetric (particle/antiparticle).
func Symmetrize(scores, labels, weights []float64) (s, l, w []float64) {
	n := len(scores)
	s = make([]float64, 0, 2*n)
	l = make([]float64, 0, 2*n)
	w = make([]float64, 0, 2*n)

	for i := 0; i < n; i++ {
		half := weights[i] / 2
		s = append(s, scores[i])
		l = append(l, labels[i])
		w = append(w, half)

		s = append(s, 1-scores[i])
		l = append(l, 1-labels[i])
		w = append(w, half)
	}
	return s, l, w
}
