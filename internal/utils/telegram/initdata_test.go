package telegram

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

const testBotToken = "7342037359:AAHI25ES9xCOMPtestTokenForUnitTests"

var testAuthDate = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func testValues() map[string]string {
	return map[string]string{
		"query_id":  "AAHdF6IQAAAAAN0XohDhrOrc",
		"user":      `{"id":12345,"first_name":"Ivan","last_name":"Petrov","username":"ivanp","language_code":"ru","photo_url":"https://t.me/i/userpic/320/ivanp.jpg"}`,
		"auth_date": strconv.FormatInt(testAuthDate.Unix(), 10),
	}
}

func TestVerifyInitData_RecoversUser(t *testing.T) {
	raw := EncodeInitData(testValues(), testBotToken)

	data, err := VerifyInitDataAt(raw, testBotToken, time.Hour, testAuthDate.Add(time.Minute))
	require.NoError(t, err)

	user, err := data.RequireUser()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.ID)
	assert.Equal(t, "ivanp", user.Username)
	assert.Equal(t, "Ivan", user.FirstName)
	assert.Equal(t, "Petrov", user.LastName)
	assert.Equal(t, "ru", user.LanguageCode)
	assert.Equal(t, testAuthDate.Unix(), data.AuthDate.Unix())
	assert.NotContains(t, data.Raw, "hash")
	assert.Equal(t, "AAHdF6IQAAAAAN0XohDhrOrc", data.Raw["query_id"])
}

func TestVerifyInitData_MatchesLibraryValidation(t *testing.T) {
	raw := EncodeInitData(testValues(), testBotToken)

	require.NoError(t, initdata.Validate(raw, testBotToken, 0))
}

func TestVerifyInitData_KeyOrderIndependent(t *testing.T) {
	values := testValues()
	hash := SignInitData(values, testBotToken)

	raw := strings.Join([]string{
		"user=" + url.QueryEscape(values["user"]),
		"hash=" + hash,
		"auth_date=" + values["auth_date"],
		"query_id=" + values["query_id"],
	}, "&")

	_, err := VerifyInitDataAt(raw, testBotToken, 0, testAuthDate)
	require.NoError(t, err)
}

func TestVerifyInitData_HashCaseInsensitive(t *testing.T) {
	values := testValues()
	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	q.Set("hash", strings.ToUpper(SignInitData(values, testBotToken)))

	_, err := VerifyInitDataAt(q.Encode(), testBotToken, 0, testAuthDate)
	require.NoError(t, err)
}

func TestVerifyInitData_MissingHash(t *testing.T) {
	q := url.Values{}
	for k, v := range testValues() {
		q.Set(k, v)
	}

	_, err := VerifyInitDataAt(q.Encode(), testBotToken, 0, testAuthDate)
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = VerifyInitDataAt("", testBotToken, 0, testAuthDate)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestVerifyInitData_SingleCharacterMutation(t *testing.T) {
	raw := EncodeInitData(testValues(), testBotToken)
	cut := strings.Index(raw, "hash=")
	require.Positive(t, cut)

	for i := 0; i < cut; i++ {
		switch raw[i] {
		case '%', '&', '=':
			continue
		}
		repl := byte('a')
		if raw[i] == 'a' {
			repl = 'b'
		}
		mutated := raw[:i] + string(repl) + raw[i+1:]

		_, err := VerifyInitDataAt(mutated, testBotToken, 0, testAuthDate)
		require.ErrorIs(t, err, ErrInvalidSignature, "mutation at %d: %q", i, mutated)
	}
}

func TestVerifyInitData_WrongToken(t *testing.T) {
	raw := EncodeInitData(testValues(), testBotToken)

	_, err := VerifyInitDataAt(raw, "other:token", 0, testAuthDate)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = VerifyInitDataAt(raw, "", 0, testAuthDate)
	assert.ErrorIs(t, err, ErrNoBotToken)
}

func TestVerifyInitData_Expiry(t *testing.T) {
	raw := EncodeInitData(testValues(), testBotToken)

	_, err := VerifyInitDataAt(raw, testBotToken, 24*time.Hour, testAuthDate.Add(25*time.Hour))
	assert.ErrorIs(t, err, ErrExpired)

	_, err = VerifyInitDataAt(raw, testBotToken, 24*time.Hour, testAuthDate.Add(23*time.Hour))
	assert.NoError(t, err)

	_, err = VerifyInitDataAt(raw, testBotToken, 0, testAuthDate.Add(1000*time.Hour))
	assert.NoError(t, err, "zero max age disables the check")
}

func TestVerifyInitData_BadAuthDate(t *testing.T) {
	values := testValues()
	values["auth_date"] = "yesterday"
	raw := EncodeInitData(values, testBotToken)

	_, err := VerifyInitDataAt(raw, testBotToken, time.Hour, testAuthDate)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestVerifyInitData_NoAuthDateNoUser(t *testing.T) {
	values := map[string]string{"query_id": "abc"}
	raw := EncodeInitData(values, testBotToken)

	data, err := VerifyInitDataAt(raw, testBotToken, time.Hour, testAuthDate)
	require.NoError(t, err)
	assert.True(t, data.AuthDate.IsZero())
	assert.Nil(t, data.User)

	_, err = data.RequireUser()
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestVerifyInitData_DecodesOnce(t *testing.T) {
	// A literal "%41" in a value must be signed as "%41", not as "A".
	values := map[string]string{"start_param": "%41", "auth_date": testValues()["auth_date"]}
	raw := EncodeInitData(values, testBotToken)

	data, err := VerifyInitDataAt(raw, testBotToken, 0, testAuthDate)
	require.NoError(t, err)
	assert.Equal(t, "%41", data.Raw["start_param"])
}
