package staff

import (
	"testing"
	"time"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey = []byte("secret")
	passwordResetTimeoutDelta = 3 * 24 * time.Hour

	now := time.Now()
	fac := Facilitator{
		ID:         1,
		FirstName:  "Asha",
		LastName:   "Mwinyi",
		Email:      "asha@test.test",
		EmployeeID: "EMP-001",
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_ = fac.SetPassword("Tr0ub4dor&3")
	acct := Account{Role: "facilitator", Facilitator: &fac}

	validToken := makeToken(acct)

	// generate an expired token
	dayLate := passwordResetTimeoutDelta + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := makeToken(acct)
	nowFunc = time.Now // reset

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "no token", wantErr: errInvalidToken},
		{name: "invalid parts len", token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(acct, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	mgr := Manager{ID: 42, Email: "boss@test.test"}
	acct := Account{Role: "manager", Manager: &mgr}

	role, id, err := decodeUID(EncodeUID(acct))
	if err != nil {
		t.Fatalf("decodeUID() error = %v", err)
	}
	if role != "manager" || id != 42 {
		t.Errorf("decodeUID() = (%q, %d), want (manager, 42)", role, id)
	}

	if _, _, err = decodeUID("!!!not-base64!!!"); err != errInvalidToken {
		t.Errorf("decodeUID() error = %v, want %v", err, errInvalidToken)
	}
	if _, _, err = decodeUID("bm9jb2xvbg"); err != errInvalidToken { // "nocolon"
		t.Errorf("decodeUID() error = %v, want %v", err, errInvalidToken)
	}
}
