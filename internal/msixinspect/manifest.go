package msixinspect

import "encoding/xml"

// appxManifest mirrors the subset of AppxManifest.xml (single-package
// layout) spec.md §4.E reads. Unknown elements/attributes are ignored by
// encoding/xml by default, matching the permissive-deserializer posture
// the rest of this module takes toward vendor XML/YAML input.
type appxManifest struct {
	XMLName xml.Name `xml:"Package"`
	Identity struct {
		Name                 string `xml:"Name,attr"`
		Publisher            string `xml:"Publisher,attr"`
		Version              string `xml:"Version,attr"`
		ProcessorArchitecture string `xml:"ProcessorArchitecture,attr"`
	} `xml:"Identity"`
	Properties struct {
		DisplayName          string `xml:"DisplayName"`
		PublisherDisplayName string `xml:"PublisherDisplayName"`
		Description          string `xml:"Description"`
	} `xml:"Properties"`
	Dependencies struct {
		TargetDeviceFamily []struct {
			Name      string `xml:"Name,attr"`
			MinVersion string `xml:"MinVersion,attr"`
		} `xml:"TargetDeviceFamily"`
	} `xml:"Dependencies"`
}

// appxBundleManifest mirrors AppxMetadata/AppxBundleManifest.xml: the list
// of child packages a bundle carries, each pointing at an inner .msix/.appx
// member of the outer ZIP container by its in-archive relative path.
type appxBundleManifest struct {
	XMLName  xml.Name `xml:"Bundle"`
	Packages struct {
		Package []bundlePackageEntry `xml:"Package"`
	} `xml:"Packages"`
}

type bundlePackageEntry struct {
	Type             string `xml:"Type,attr"`
	Architecture     string `xml:"Architecture,attr"`
	RelativeFilePath string `xml:"FileName,attr"`
}
