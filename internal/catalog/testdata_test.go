package catalog_test

import (
	"testing/fstest"
)

const poisFile = `castle;Grad Komenda;Old castle above the town;https://www.openstreetmap.org/#map=17/46.2833/15.0722;https://maps.google.com/?q=46.2833,15.0722;https://maps.apple.com/?ll=46.2833,15.0722

church;Church of St. Margaret;Parish church;https://www.openstreetmap.org/#map=17/46.2811/15.0700;https://maps.google.com/?q=46.2811,15.0700;
broken;only;three
pond;Pond;Fishing pond;https://www.openstreetmap.org/#map=17/46.3000/15.1000;https://maps.google.com/?q=46.3,15.1;
`

const titlesFile = `castle;EN:Castle;SL:Grad;DE:Schloss;NL:Kasteel
church;EN:Church;SL:Cerkev
takeme;EN:Take me there!;SL:Pelji me tja!;DE:Bring mich hin!
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"pois.txt":                {Data: []byte(poisFile)},
		"poititles.txt":           {Data: []byte(titlesFile)},
		"images/castle1.webp":     {Data: []byte{0}},
		"images/castle3.webp":     {Data: []byte{0}},
		"descriptions/castle.txt": {Data: []byte(castleDescription)},
	}
}

const castleDescription = `EN: The castle was first mentioned in 1250.

It burned down twice.

Today it hosts a museum.

Concerts are held in summer.
DE: Das Schloss wurde 1250 erstmals erwähnt.

Heute ist es ein Museum.
SL: Grad je bil prvič omenjen leta 1250.
`
