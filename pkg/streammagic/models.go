package streammagic

// Info is the device identity returned by /smoip/system/info.
type Info struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Timezone   string `json:"timezone"`
	Locale     string `json:"locale"`
	UDN        string `json:"udn"`     // UPnP unique device name
	UnitID     string `json:"unit_id"` // Factory unit identifier
	APIVersion string `json:"api"`     // SMOIP API version, e.g. "1.8"
}

// Source is one selectable input returned by /smoip/system/sources.
type Source struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	DefaultName       string `json:"default_name"`
	Nameable          bool   `json:"nameable"`
	UISelectable      bool   `json:"ui_selectable"`
	Description       string `json:"description"`
	DescriptionLocale string `json:"description_locale"`
	PreferredOrder    int    `json:"preferred_order"`
}

// State is the zone state returned by /smoip/zone/state at the time of the call.
type State struct {
	Source        string `json:"source"` // Matches Source.ID of the active input
	Power         bool   `json:"power"`
	PreAmpMode    bool   `json:"pre_amp_mode"`
	PreAmpState   bool   `json:"pre_amp_state"`
	Mute          bool   `json:"mute"`
	VolumeStep    int    `json:"volume_step"`
	VolumePercent int    `json:"volume_percent"`

	// VolumeDB is nil when the device omits volume_db (e.g. while in standby).
	VolumeDB *int `json:"volume_db,omitempty"`
}

// FindSource returns the source with the given id.
func FindSource(sources []Source, id string) (Source, bool) {
	for _, s := range sources {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}
