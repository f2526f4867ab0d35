/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: divergence.go
Description: Kullback-Leibler divergence of a sample model against a reference model,
computed independently over bigrams and trigrams.
*/

package ngram

import "math"

// Divergences holds the bigram and trigram divergence of one sample/reference pair.
type Divergences struct {
	Bigrams  float64 `json:"bigrams"`
	Trigrams float64 `json:"trigrams"`
}

// KL returns D(sample || ref). Only n-grams present in the sample contribute;
// n-grams missing from the reference use the reference floor.
func KL(sample *Model, ref *Reference) Divergences {
	return Divergences{
		Bigrams:  kl(sample.bigrams, ref.bigrams, ref.bigramFloor),
		Trigrams: kl(sample.trigrams, ref.trigrams, ref.trigramFloor),
	}
}

func kl(p, q map[uint32]float64, floor float64) float64 {
	var d float64
	for key, f := range p {
		if f == 0 {
			continue
		}
		g, ok := q[key]
		if !ok {
			g = floor
		}
		d += f * math.Log(f/g)
	}
	return d
}
