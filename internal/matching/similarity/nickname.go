package similarity

import "strings"

// nicknameClasses is the frozen process-wide nickname table. Each inner
// slice is one equivalence class; membership is symmetric and transitive
// within a class.
var nicknameClasses = [][]string{
	{"william", "bill", "billy", "will", "willy"},
	{"robert", "bob", "bobby", "rob", "robby"},
	{"richard", "dick", "rick", "ricky", "rich"},
	{"james", "jim", "jimmy", "jamie"},
	{"john", "jack", "johnny"},
	{"michael", "mike", "mickey"},
	{"elizabeth", "liz", "beth", "betty", "betsy"},
	{"margaret", "maggie", "meg", "peggy"},
	{"catherine", "katherine", "cathy", "kate", "katie", "kathy"},
}

// nicknameClassOf maps a lowercase name token to the index of its class;
// tokens that belong to no class are absent from the map.
var nicknameClassOf = buildNicknameIndex()

func buildNicknameIndex() map[string]int {
	idx := make(map[string]int)
	for classIdx, class := range nicknameClasses {
		for _, name := range class {
			idx[name] = classIdx
		}
	}
	return idx
}

// NicknameEquivalent reports whether a and b fall in the same equivalence
// class. Inputs are compared case-insensitively; callers should already have
// run normalize.NameToken but this is tolerant of raw input too.
func NicknameEquivalent(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	ca, ok := nicknameClassOf[a]
	if !ok {
		return false
	}
	cb, ok := nicknameClassOf[b]
	if !ok {
		return false
	}
	return ca == cb
}
