// Package layout chooses the popup skin and loads its XML template.
//
// A skin is picked from the number of list slots by a Policy. Each skin
// names a template describing popup sizing and the elements a renderer
// builds for full rows, half pairs and dividers:
//
//	<popup min-width="360" max-width="360" rows="2">
//	  <list>
//	    <row><icon /><box orientation="vertical"><text /><subtext /></box></row>
//	    <pair><icon /><text /></pair>
//	    <divider />
//	  </list>
//	  <toast />
//	</popup>
//
// Templates are embedded and can be overridden per skin by placing
// <skin>.xml in the user layouts directory.
package layout
