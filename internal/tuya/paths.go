package tuya

import (
	"fmt"
	"net/url"
)

// Vendor endpoints used by lockfleet. Identifiers are path-escaped.

func PasswordTicketPath(deviceID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/door-lock/password-ticket", url.PathEscape(deviceID))
}

func TempPasswordPath(deviceID string) string {
	return fmt.Sprintf("/v1.0/smart-lock/device/%s/template/temp-password", url.PathEscape(deviceID))
}

func ModifyTempPasswordPath(deviceID, passwordID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/door-lock/temp-passwords/%s/modify-password",
		url.PathEscape(deviceID), url.PathEscape(passwordID))
}

// TempPasswordsPath lists temporary passwords; DELETE on a child removes one.
func TempPasswordsPath(deviceID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/door-lock/temp-passwords", url.PathEscape(deviceID))
}

func DeleteTempPasswordPath(deviceID, passwordID string) string {
	return TempPasswordsPath(deviceID) + "/" + url.PathEscape(passwordID)
}

// TempPasswordDetailPath uses the singular "temp-password" segment.
func TempPasswordDetailPath(deviceID, passwordID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/door-lock/temp-password/%s",
		url.PathEscape(deviceID), url.PathEscape(passwordID))
}

func FreezeTempPasswordPath(deviceID, passwordID string) string {
	return DeleteTempPasswordPath(deviceID, passwordID) + "/freeze-password"
}

func UnfreezeTempPasswordPath(deviceID, passwordID string) string {
	return DeleteTempPasswordPath(deviceID, passwordID) + "/unfreeze-password"
}

func ResetTempPasswordsPath(deviceID string) string {
	return TempPasswordsPath(deviceID) + "/reset-password"
}

func AllocateCredentialPath(deviceID, userID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/device-lock/users/%s/allocate",
		url.PathEscape(deviceID), url.PathEscape(userID))
}

func CancelAllocatePath(deviceID string) string {
	return fmt.Sprintf("/v1.0/smart-lock/devices/%s/opmodes/actions/cancel-allocate", url.PathEscape(deviceID))
}

func UserOpmodesPath(deviceID, userID string) string {
	return fmt.Sprintf("/v1.0/smart-lock/devices/%s/opmodes/%s",
		url.PathEscape(deviceID), url.PathEscape(userID))
}

func DoorOperatePath(deviceID string) string {
	return fmt.Sprintf("/v1.0/smart-lock/devices/%s/password-free/door-operate", url.PathEscape(deviceID))
}

func UserDevicesPath(uid string) string {
	return fmt.Sprintf("/v1.0/users/%s/devices", url.PathEscape(uid))
}

func DeviceDetailPath(deviceID string) string {
	return fmt.Sprintf("/v2.0/cloud/thing/%s", url.PathEscape(deviceID))
}

func DeviceStatusPath(deviceID string) string {
	return fmt.Sprintf("/v1.0/iot-03/devices/%s/status", url.PathEscape(deviceID))
}

func DeviceUsersPath(deviceID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/users", url.PathEscape(deviceID))
}

func UnassignedKeysPath(deviceID string) string {
	return fmt.Sprintf("/v1.0/devices/%s/door-lock/unassigned-keys", url.PathEscape(deviceID))
}

func AlarmLogsPath(deviceID string) string {
	return fmt.Sprintf("/v1.1/devices/%s/door-lock/alarm-logs", url.PathEscape(deviceID))
}

func UnlockLogsPath(deviceID string) string {
	return fmt.Sprintf("/v1.1/devices/%s/door-lock/open-logs", url.PathEscape(deviceID))
}
