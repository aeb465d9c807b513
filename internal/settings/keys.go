package settings

// Well-known setting keys.
const (
	KeyFlightMode             = "telephony/flight_mode"                // bool
	KeySIMSlot                = "telephony/sim_slot"                   // int, SIM* values
	KeyMobileData             = "network/3g_enable"                    // bool
	KeyMobileDataOnReminder   = "setappl/mobile_data_on_reminder"      // bool
	KeyMobileDataOffReminder  = "setappl/mobile_data_off_reminder"     // bool
	KeySAPConnType            = "sap/conn_type"                        // int, SAP* bit flags
	KeyWifiUse                = "wifi/wearable_wifi_use"               // int, 0 off 1 on
	KeySoundStatus            = "setappl/sound_status"                 // bool
	KeyVibrationStatus        = "setappl/vibration_status"             // bool
	KeyRingtoneVolume         = "sound/ringtone_volume"                // int
	KeyPowerSavingMode        = "setappl/psmode"                       // int, PowerSaving* values
	KeyAccessibilityPowerHold = "setappl/accessibility_power_key_hold" // int, PowerKeyShortcut* values
	KeyPMState                = "pm/state"                             // int, PMState* values
	KeyCountry                = "system/country"                       // string, ISO 3166 alpha-2
)

// SIM slot states.
const (
	SIMNotPresent = 0
	SIMInserted   = 1
	SIMCardError  = 2
	SIMUnknown    = 3
)

// SAP connection type bits.
const (
	SAPBluetooth = 0x01
	SAPMobile    = 0x10
)

// Power saving modes.
const (
	PowerSavingOff      = 0
	PowerSavingOn       = 1
	PowerSavingEnhanced = 2
)

// Power key hold shortcuts.
const (
	PowerKeyShortcutNone          = 0
	PowerKeyShortcutAccessibility = 1
)

// Power manager display states.
const (
	PMStateNormal = 1
	PMStateDim    = 2
	PMStateLCDOff = 3
)

// Defaults returns the value every known key holds on a fresh device.
func Defaults() map[string]any {
	return map[string]any{
		KeyFlightMode:             false,
		KeySIMSlot:                SIMInserted,
		KeyMobileData:             false,
		KeyMobileDataOnReminder:   false,
		KeyMobileDataOffReminder:  false,
		KeySAPConnType:            0,
		KeyWifiUse:                1,
		KeySoundStatus:            true,
		KeyVibrationStatus:        false,
		KeyRingtoneVolume:         5,
		KeyPowerSavingMode:        PowerSavingOff,
		KeyAccessibilityPowerHold: PowerKeyShortcutNone,
		KeyPMState:                PMStateNormal,
		KeyCountry:                "",
	}
}
