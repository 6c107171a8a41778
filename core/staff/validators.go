package staff

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/kozi/core"
)

var (
	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to account attributes"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"
	commonPasswords = make([]string, 0, 306) // total pwds in assets/common-passwords.txt.gz
)

func init() {
	loadCommonPasswords()

	core.Validate.RegisterStructValidation(staffStructValidation, NewManager{}, NewFacilitator{}, UpdateManager{}, UpdateFacilitator{}, ResetAccountPassword{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdComplexityTag, pwdComplexityText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(pwdNoCommonTag, pwdNoCommonText)
}

func loadCommonPasswords() {
	pwdAssetPath := filepath.Join(core.Getwd(), "assets", "common-passwords.txt.gz")
	if file, err := os.Open(pwdAssetPath); err == nil {
		//goland:noinspection GoUnhandledErrorResult
		defer file.Close()
		if gzRdr, err := gzip.NewReader(file); err == nil {
			scanner := bufio.NewScanner(gzRdr)
			for scanner.Scan() {
				commonPasswords = append(commonPasswords, strings.TrimSpace(scanner.Text()))
			}
		}
	}
	sort.Strings(commonPasswords)
}

// staffStructValidation applies the password policy to every DTO that can
// carry a password.
func staffStructValidation(sl validator.StructLevel) {
	switch obj := sl.Current().Interface().(type) {
	case NewManager:
		validatePassword(obj.Password, obj.FirstName, obj.LastName, obj.Email, sl)
	case NewFacilitator:
		validatePassword(obj.Password, obj.FirstName, obj.LastName, obj.Email, sl)
	case UpdateManager:
		if obj.Password != nil {
			validatePassword(*obj.Password, deref(obj.FirstName), deref(obj.LastName), deref(obj.Email), sl)
		}
	case UpdateFacilitator:
		if obj.Password != nil {
			validatePassword(*obj.Password, deref(obj.FirstName), deref(obj.LastName), deref(obj.Email), sl)
		}
	case ResetAccountPassword:
		validatePassword(obj.Password, "", "", "", sl)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// validatePassword applies the password policy to the provided password:
// - minLen: 8
// - no whitespace
// - not all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no account attrs similarity
// - no common password
func validatePassword(pwd, firstName, lastName, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	pwdLen := len(pwd)
	if pwdLen == 0 {
		return // "required" covers it
	}
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range []rune(pwd) {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		reportErr(pwdComplexityTag)
		return
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	if getRatio(pwd, firstName) >= pwdMaxSim ||
		getRatio(pwd, lastName) >= pwdMaxSim ||
		getRatio(pwd, email) >= pwdMaxSim {
		reportErr(pwdAttrSimTag)
		return
	}

	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
