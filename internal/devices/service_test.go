package devices

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/EternisAI/lockfleet/internal/failure"
	"github.com/EternisAI/lockfleet/internal/tuya"
	"github.com/EternisAI/lockfleet/internal/tuya/tuyatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDevice = "abc123"

func newSync(fake *tuyatest.Fake) *Synchronizer {
	return NewSynchronizer(fake, "uid-1", DefaultQueryDefaults())
}

func TestListDevicesV1List(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.UserDevicesPath("uid-1"), `{
		"success": true,
		"result": [
			{"id": "abc123", "name": "Front door", "online": true, "category": "jtmspro",
			 "status": [{"code": "residual_electricity", "value": 88}]},
			{"id": "def456", "custom_name": "Back door"}
		]
	}`)

	devs, err := newSync(fake).ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 2)

	assert.Equal(t, "abc123", devs[0].ID)
	assert.Equal(t, "Front door", devs[0].Name)
	assert.True(t, devs[0].Online)
	require.Len(t, devs[0].Status, 1)
	assert.Equal(t, "residual_electricity", devs[0].Status[0].Code)

	assert.Equal(t, "Back door", devs[1].Name)
	assert.False(t, devs[1].Online)
	assert.NotNil(t, devs[1].Status)
	assert.Empty(t, devs[1].Status)
}

func TestListDevicesWrappedList(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.UserDevicesPath("uid-1"),
		`{"success":true,"result":{"devices":[{"id":"abc123","is_online":true}],"total":1}}`)

	devs, err := newSync(fake).ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, "abc123", devs[0].ID)
	assert.True(t, devs[0].Online)
}

func TestListDevicesRequiresAppUID(t *testing.T) {
	fake := tuyatest.New()
	_, err := NewSynchronizer(fake, "", DefaultQueryDefaults()).ListDevices(context.Background())
	assert.ErrorIs(t, err, failure.ErrInternal)
	assert.Empty(t, fake.Calls())
}

func TestOnlinePrefersMoreSpecificField(t *testing.T) {
	fake := tuyatest.New().
		Reply(http.MethodGet, tuya.DeviceDetailPath(testDevice),
			`{"success":true,"result":{"id":"abc123","name":"Front","online":false,"is_online":true}}`).
		Reply(http.MethodGet, tuya.DeviceStatusPath(testDevice), `{"success":true,"result":[]}`)

	d, err := newSync(fake).GetDeviceDetail(context.Background(), testDevice)
	require.NoError(t, err)
	assert.True(t, d.Online)
}

func TestOnlineFallsBackPastUnparsableField(t *testing.T) {
	fake := tuyatest.New().
		Reply(http.MethodGet, tuya.DeviceDetailPath(testDevice),
			`{"success":true,"result":{"id":"abc123","is_online":"","online":true}}`).
		Reply(http.MethodGet, tuya.DeviceStatusPath(testDevice), `{"success":true,"result":[]}`)

	d, err := newSync(fake).GetDeviceDetail(context.Background(), testDevice)
	require.NoError(t, err)
	assert.True(t, d.Online)
}

func TestGetDeviceDetailMergesStatus(t *testing.T) {
	fake := tuyatest.New().
		Reply(http.MethodGet, tuya.DeviceDetailPath(testDevice),
			`{"success":true,"result":{"name":"Front","is_online":"true","productName":"WiFi Lock","active_time":1700000000}}`).
		Reply(http.MethodGet, tuya.DeviceStatusPath(testDevice),
			`{"success":true,"result":{"code":"residual_electricity","value":42}}`)

	d, err := newSync(fake).GetDeviceDetail(context.Background(), testDevice)
	require.NoError(t, err)

	assert.Equal(t, testDevice, d.ID)
	assert.Equal(t, "Front", d.Name)
	assert.True(t, d.Online)
	assert.Equal(t, "WiFi Lock", d.ProductName)
	assert.Equal(t, int64(1700000000), d.ActiveTime)
	require.Len(t, d.Status, 1)
	assert.Equal(t, "residual_electricity", d.Status[0].Code)
	assert.EqualValues(t, 42, d.Status[0].Value)
}

func TestGetDeviceDetailVendorFailure(t *testing.T) {
	fake := tuyatest.New().Fail(http.MethodGet, tuya.DeviceDetailPath(testDevice), "permission deny")

	_, err := newSync(fake).GetDeviceDetail(context.Background(), testDevice)
	assert.ErrorIs(t, err, failure.ErrUpstream)
	assert.Equal(t, 0, fake.CallCount(http.MethodGet, tuya.DeviceStatusPath(testDevice)))
}

func TestGetDeviceDetailRequiresID(t *testing.T) {
	_, err := newSync(tuyatest.New()).GetDeviceDetail(context.Background(), "")
	assert.ErrorIs(t, err, failure.ErrValidation)
}

func TestListUsersNormalisesFieldNames(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.DeviceUsersPath(testDevice), `{
		"success": true,
		"result": [
			{"user_id": "u1", "nick_name": "Ana", "role": "admin", "avatar": "a.png"},
			{"uid": "u2", "name": "Ben", "user_type": 20},
			{"uid": "u3"}
		]
	}`)

	users, err := newSync(fake).ListUsers(context.Background(), testDevice)
	require.NoError(t, err)
	require.Len(t, users, 3)

	assert.Equal(t, User{ID: "u1", NickName: "Ana", Avatar: "a.png", Role: "admin"}, users[0])
	assert.Equal(t, User{ID: "u2", NickName: "Ben", Role: "normal"}, users[1])
	assert.Equal(t, User{ID: "u3", Role: "normal"}, users[2])
}

func TestListUsersSingleObject(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.DeviceUsersPath(testDevice),
		`{"success":true,"result":{"user_id":"u1","nick_name":"Ana","role":"admin"}}`)

	users, err := newSync(fake).ListUsers(context.Background(), testDevice)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}

func TestListUnassignedCredentials(t *testing.T) {
	path := tuya.UnassignedKeysPath(testDevice)
	fake := tuyatest.New().Reply(http.MethodGet, path,
		`{"success":true,"result":{"unlock_keys":[{"unlock_no":3,"unlock_type":"fingerprint","unlock_name":"thumb"}]}}`)

	creds, err := newSync(fake).ListUnassignedCredentials(context.Background(), testDevice, "fingerprint")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, Credential{No: 3, UnlockType: "fingerprint", Name: "thumb"}, creds[0])

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "fingerprint", calls[0].Query.Get("unlock_type"))
}

func TestListUnassignedCredentialsMissingKeys(t *testing.T) {
	path := tuya.UnassignedKeysPath(testDevice)
	fake := tuyatest.New().Reply(http.MethodGet, path, `{"success":true,"result":{}}`)

	creds, err := newSync(fake).ListUnassignedCredentials(context.Background(), testDevice, "")
	require.NoError(t, err)
	assert.NotNil(t, creds)
	assert.Empty(t, creds)
	assert.Empty(t, fake.Calls()[0].Query)
}

func TestListUnassignedCredentialsBareList(t *testing.T) {
	path := tuya.UnassignedKeysPath(testDevice)
	fake := tuyatest.New().Reply(http.MethodGet, path, `{"success":true,"result":[{"no":1,"opmode":"card"}]}`)

	creds, err := newSync(fake).ListUnassignedCredentials(context.Background(), testDevice, "")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "card", creds[0].UnlockType)
	assert.Equal(t, int64(1), creds[0].No)
}

func TestAlarmLogsApplyDefaults(t *testing.T) {
	path := tuya.AlarmLogsPath(testDevice)
	fake := tuyatest.New().Reply(http.MethodGet, path, `{
		"success": true,
		"result": {"total": 2, "records": [
			{"nick_name": "Ana", "update_time": 1700000000000, "status": {"code": "alarm_lock", "value": "wrong_finger"}},
			{"nick_name": "Ben", "update_time": 1700000001000, "status": [{"code": "alarm_tamper", "value": true}],
			 "media_infos": [{"file_key": "k", "file_url": "https://x"}]}
		]}
	}`)
	s := newSync(fake)
	now := time.UnixMilli(1700000100000)
	s.now = func() time.Time { return now }

	page, err := s.ListAlarmLogs(context.Background(), testDevice, LogQuery{})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	assert.Equal(t, int64(2), page.Total)
	assert.Len(t, page.Records[0].Status, 1)
	assert.Len(t, page.Records[1].Status, 1)
	assert.Empty(t, page.Records[0].MediaInfos)
	assert.Len(t, page.Records[1].MediaInfos, 1)

	q := fake.Calls()[0].Query
	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), q.Get("end_time"))
	assert.Equal(t, strconv.FormatInt(now.Add(-7*24*time.Hour).UnixMilli(), 10), q.Get("start_time"))
	assert.Equal(t, "1", q.Get("page_no"))
	assert.Equal(t, "10", q.Get("page_size"))
	assert.Equal(t, "true", q.Get("show_media_info"))
	assert.Contains(t, q.Get("codes"), "alarm_break_in")
}

func TestUnlockLogsCallerQuery(t *testing.T) {
	path := tuya.UnlockLogsPath(testDevice)
	fake := tuyatest.New().Reply(http.MethodGet, path, `{"success":true,"result":{"logs":[],"has_more":true}}`)
	start := time.UnixMilli(1700000000000)
	end := time.UnixMilli(1700003600000)

	page, err := newSync(fake).ListUnlockLogs(context.Background(), testDevice, LogQuery{Start: start, End: end, PageNo: 3, PageSize: 500})
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.True(t, page.HasMore)

	q := fake.Calls()[0].Query
	assert.Equal(t, "1700000000000", q.Get("start_time"))
	assert.Equal(t, "1700003600000", q.Get("end_time"))
	assert.Equal(t, "3", q.Get("page_no"))
	assert.Equal(t, "100", q.Get("page_size"))
	assert.Empty(t, q.Get("codes"))
}

func TestMalformedEnvelopeIsProtocolError(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.DeviceUsersPath(testDevice), `{"result":[]}`)

	_, err := newSync(fake).ListUsers(context.Background(), testDevice)
	assert.ErrorIs(t, err, failure.ErrProtocol)
}

func TestListTemporaryCodesNormalisesPhase(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.TempPasswordsPath(testDevice), `{
		"success": true,
		"result": [
			{"id": 11, "name": "Guest", "phase": 2, "effective_time": 1700000000, "invalid_time": 1700003600, "phone": ""},
			{"id": 12, "name": "Cleaner", "phase": 3},
			{"id": 13, "phase": 7},
			{"id": 14, "phase": 0},
			{"id": 15, "phase": 1},
			{"id": 16, "phase": 9}
		]
	}`)

	codes, err := newSync(fake).ListTemporaryCodes(context.Background(), testDevice, true)
	require.NoError(t, err)
	require.Len(t, codes, 6)

	assert.Equal(t, TempCode{ID: "11", Name: "Guest", Phase: PhaseActive, EffectiveTime: 1700000000, InvalidTime: 1700003600}, codes[0])
	phases := make([]string, len(codes))
	for i, c := range codes {
		phases[i] = c.Phase
	}
	assert.Equal(t, []string{PhaseActive, PhaseFrozen, PhaseFailed, PhaseDeleted, PhasePending, PhaseUnknown}, phases)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "true", calls[0].Query.Get("valid"))
}

func TestListTemporaryCodesWrappedAndEmpty(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.TempPasswordsPath(testDevice),
		`{"success":true,"result":{"list":[{"id":"21","phase":"2"}],"total":1}}`)

	codes, err := newSync(fake).ListTemporaryCodes(context.Background(), testDevice, false)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, PhaseActive, codes[0].Phase)
	assert.Empty(t, fake.Calls()[0].Query)

	fake.Reply(http.MethodGet, tuya.TempPasswordsPath(testDevice), `{"success":true,"result":null}`)
	codes, err = newSync(fake).ListTemporaryCodes(context.Background(), testDevice, false)
	require.NoError(t, err)
	assert.NotNil(t, codes)
	assert.Empty(t, codes)
}

func TestGetTemporaryCode(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.TempPasswordDetailPath(testDevice, "42"),
		`{"success":true,"result":{"name":"Guest","phase":3,"effectiveTime":1700000000,"invalidTime":1700003600,"phone":"5550100"}}`)

	code, err := newSync(fake).GetTemporaryCode(context.Background(), testDevice, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", code.ID)
	assert.Equal(t, PhaseFrozen, code.Phase)
	assert.Equal(t, int64(1700003600), code.InvalidTime)
	assert.Equal(t, "5550100", code.Phone)
}

func TestGetTemporaryCodeVendorFailure(t *testing.T) {
	fake := tuyatest.New().Fail(http.MethodGet, tuya.TempPasswordDetailPath(testDevice, "42"), "password not exist")

	_, err := newSync(fake).GetTemporaryCode(context.Background(), testDevice, "42")
	assert.ErrorIs(t, err, failure.ErrUpstream)

	_, err = newSync(fake).GetTemporaryCode(context.Background(), testDevice, "")
	assert.ErrorIs(t, err, failure.ErrValidation)
	assert.Len(t, fake.Calls(), 1)
}

func TestListUserCredentials(t *testing.T) {
	fake := tuyatest.New().Reply(http.MethodGet, tuya.UserOpmodesPath(testDevice, "u-guest"),
		`{"success":true,"result":[{"opmode":"card","unlock_sn":2,"unlock_name":"Blue tag"}]}`)

	creds, err := newSync(fake).ListUserCredentials(context.Background(), testDevice, "u-guest")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, Credential{No: 2, UnlockType: "card", Name: "Blue tag", SN: 2}, creds[0])

	_, err = newSync(fake).ListUserCredentials(context.Background(), testDevice, " ")
	assert.ErrorIs(t, err, failure.ErrValidation)
}
