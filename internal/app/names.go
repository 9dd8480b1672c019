package app

import (
	"fmt"
	"math/rand"
)

var pseudonyms = [...]string{
	"Albatross", "Badger", "Caracal", "Dingo", "Egret", "Ferret", "Gecko", "Heron",
	"Ibex", "Jackal", "Kestrel", "Lemur", "Marmot", "Narwhal", "Ocelot", "Pelican",
	"Quokka", "Raven", "Stoat", "Tapir", "Urchin", "Vole", "Walrus", "Xerus",
	"Yak", "Zebu", "Auk", "Bison", "Coyote", "Dormouse", "Eland", "Finch",
}

// Pseudonym returns the display name of a client id.
func Pseudonym(id int) string {
	n := len(pseudonyms)
	if id < n {
		return pseudonyms[id]
	}
	return fmt.Sprintf("%s%d", pseudonyms[id%n], id/n)
}

// NewCode returns a random join code.
func NewCode(rng *rand.Rand) string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
