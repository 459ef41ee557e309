package streammagic

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the device identity
func (i Info) Summary() string {
	return fmt.Sprintf("%s (%s) API %s", i.Name, i.Model, i.APIVersion)
}

// FormatDetailed returns a formatted block with all identity fields
func (i Info) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Device Information ===\n")
	b.WriteString(fmt.Sprintf("Name:        %s\n", i.Name))
	b.WriteString(fmt.Sprintf("Model:       %s\n", i.Model))
	b.WriteString(fmt.Sprintf("API Version: %s\n", i.APIVersion))
	b.WriteString(fmt.Sprintf("Unit ID:     %s\n", i.UnitID))
	b.WriteString(fmt.Sprintf("UDN:         %s\n", i.UDN))
	b.WriteString(fmt.Sprintf("Locale:      %s\n", i.Locale))
	b.WriteString(fmt.Sprintf("Timezone:    %s\n", i.Timezone))

	return b.String()
}

// FormatVolume renders the volume as "40% (step 32, -20 dB)"
func (s State) FormatVolume() string {
	if s.VolumeDB != nil {
		return fmt.Sprintf("%d%% (step %d, %d dB)", s.VolumePercent, s.VolumeStep, *s.VolumeDB)
	}
	return fmt.Sprintf("%d%% (step %d)", s.VolumePercent, s.VolumeStep)
}

// FormatCompact returns a one-line summary of the zone state
func (s State) FormatCompact() string {
	power := "standby"
	if s.Power {
		power = "on"
	}
	mute := ""
	if s.Mute {
		mute = " [muted]"
	}
	return fmt.Sprintf("%s | %s | %s%s", power, s.Source, s.FormatVolume(), mute)
}

// FormatDetailed returns a formatted block with all state fields
func (s State) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Zone State ===\n")
	b.WriteString(fmt.Sprintf("Power:         %s\n", onOff(s.Power)))
	b.WriteString(fmt.Sprintf("Source:        %s\n", s.Source))
	b.WriteString(fmt.Sprintf("Volume:        %s\n", s.FormatVolume()))
	b.WriteString(fmt.Sprintf("Mute:          %s\n", onOff(s.Mute)))
	b.WriteString(fmt.Sprintf("Pre-amp Mode:  %s\n", onOff(s.PreAmpMode)))
	b.WriteString(fmt.Sprintf("Pre-amp State: %s\n", onOff(s.PreAmpState)))

	return b.String()
}

// FormatSources renders the source list, marking the active source with '*'
// and hiding sources that are not selectable in the device UI.
func FormatSources(sources []Source, activeID string) string {
	var b strings.Builder

	b.WriteString("=== Sources ===\n")
	if len(sources) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	for _, src := range sources {
		if !src.UISelectable {
			continue
		}
		marker := " "
		if src.ID == activeID {
			marker = "*"
		}
		name := src.Name
		if name != src.DefaultName && src.DefaultName != "" {
			name = fmt.Sprintf("%s (%s)", src.Name, src.DefaultName)
		}
		b.WriteString(fmt.Sprintf("%s %-16s %s\n", marker, src.ID, name))
	}

	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
