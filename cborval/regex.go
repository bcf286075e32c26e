package cborval

import "regexp"

func regexMatch(pattern, observed string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(observed), nil
}
