package leveldata

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" tiledversion="1.10.2" orientation="orthogonal" renderorder="right-down" width="4" height="3" tilewidth="16" tileheight="16" infinite="0" nextlayerid="3" nextobjectid="3">
 <tileset firstgid="1" name="ground" tilewidth="16" tileheight="16" tilecount="1" columns="1">
  <image source="ground.png" width="16" height="16"/>
 </tileset>
 <layer id="1" name="solid" width="4" height="3">
  <data encoding="csv">
0,0,0,0,
0,0,0,0,
1,1,0,1
</data>
 </layer>
 <objectgroup id="2" name="spawns">
  <object id="1" x="48" y="16">
   <properties>
    <property name="spawnIndex" type="int" value="1"/>
   </properties>
  </object>
  <object id="2" x="8" y="16">
   <properties>
    <property name="spawnIndex" type="int" value="0"/>
   </properties>
  </object>
 </objectgroup>
</map>
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"levels/pit.tmx": &fstest.MapFile{Data: []byte(testTMX)},
	}
}

func TestLoadCollisionData(t *testing.T) {
	data, err := LoadCollisionData(testFS(), "levels/pit.tmx")
	require.NoError(t, err)

	assert.Equal(t, "pit", data.Name)
	assert.Equal(t, 64, data.MapWidth)
	assert.Equal(t, 48, data.MapHeight)
	assert.Equal(t, []SolidRect{
		{X: 0, Y: 32, W: 16, H: 16},
		{X: 16, Y: 32, W: 16, H: 16},
		{X: 48, Y: 32, W: 16, H: 16},
	}, data.SolidRects)

	require.Len(t, data.SpawnPoints, 2)
	assert.Equal(t, SpawnPoint{X: 8, Y: 16, Index: 0}, data.SpawnPoints[0])
	assert.Equal(t, SpawnPoint{X: 48, Y: 16, Index: 1}, data.SpawnPoints[1])
}

func TestLoadCollisionDataMissingFile(t *testing.T) {
	_, err := LoadCollisionData(testFS(), "levels/nope.tmx")
	assert.ErrorContains(t, err, "load TMX levels/nope.tmx")
}

func TestLoadAllLevels(t *testing.T) {
	levels, names, err := LoadAllLevels(testFS(), "levels")
	require.NoError(t, err)
	assert.Equal(t, []string{"pit"}, names)
	assert.Contains(t, levels, "pit")
}

func TestLoadAllLevelsEmpty(t *testing.T) {
	_, _, err := LoadAllLevels(fstest.MapFS{}, "levels")
	assert.ErrorContains(t, err, "no .tmx files found")
}
